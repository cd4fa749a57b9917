package uu

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/birdayz/trydecode/pkg/codecerr"
	"github.com/birdayz/trydecode/pkg/outpath"
)

// Decoder decodes uuencoded input. The zero value logs recovery warnings to
// slog.Default().
type Decoder struct {
	Logger *slog.Logger

	// Stdout receives the payload of files named "-" in DecodeToDir. When
	// nil such files are rejected with codecerr.ErrUnsafePath.
	Stdout io.Writer
}

func (d *Decoder) logger() *slog.Logger {
	if d == nil || d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Decode finds the begin line in r and writes the payload to w.
func (d *Decoder) Decode(w io.Writer, r io.Reader) (Header, error) {
	br := bufio.NewReader(r)
	hdr, err := readHeader(br)
	if err != nil {
		return Header{}, err
	}
	return hdr, d.decodeBody(w, br)
}

// DecodeToDir decodes r into a new file inside dir named by the begin line.
// It returns the path written. Unsafe or existing names are rejected before
// any file is created; the file gets the mode from the begin line. On error
// nothing is left behind.
func (d *Decoder) DecodeToDir(dir string, r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	hdr, err := readHeader(br)
	if err != nil {
		return "", err
	}
	if hdr.Name == DefaultName {
		if d.Stdout == nil {
			return "", errorf(codecerr.ErrUnsafePath, "refusing to write %q without a stdout", hdr.Name)
		}
		return DefaultName, d.decodeBody(d.Stdout, br)
	}

	perm := os.FileMode(hdr.Mode) & os.ModePerm
	f, err := outpath.Create(dir, hdr.Name, perm)
	if err != nil {
		return "", err
	}
	err = d.decodeBody(f, br)
	if err == nil {
		// Create is subject to the umask; the header mode is applied as is.
		err = f.Chmod(perm)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// DecodeBytes decodes an in-memory uuencoded file and returns its payload.
func (d *Decoder) DecodeBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.Decode(&buf, bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readLine returns the next line including its newline, or nil at the end of
// input. A final line without a newline is returned as is.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadBytes('\n')
	if err == io.EOF {
		if len(line) == 0 {
			return nil, nil
		}
		return line, nil
	}
	return line, err
}

func readHeader(br *bufio.Reader) (Header, error) {
	for {
		line, err := readLine(br)
		if err != nil {
			return Header{}, err
		}
		if line == nil {
			return Header{}, errorf(codecerr.ErrFormat, "no begin line found")
		}
		if !bytes.HasPrefix(line, []byte("begin")) {
			continue
		}
		fields := bytes.SplitN(line, []byte(" "), 3)
		if len(fields) != 3 || string(fields[0]) != "begin" {
			continue
		}
		mode, err := strconv.ParseUint(string(bytes.TrimSpace(fields[1])), 8, 32)
		if err != nil {
			continue
		}
		return Header{
			Mode: uint32(mode),
			Name: string(bytes.TrimRight(fields[2], " \t\r\n\f")),
		}, nil
	}
}

func (d *Decoder) decodeBody(w io.Writer, br *bufio.Reader) error {
	var out []byte
	for lineNo := 1; ; lineNo++ {
		line, err := readLine(br)
		if err != nil {
			return err
		}
		if line == nil {
			return errorf(codecerr.ErrTruncated, "truncated input")
		}
		trimmed := bytes.Trim(line, " \t\r\n\f")
		if string(trimmed) == "end" {
			return nil
		}
		if len(bytes.TrimRight(line, "\r\n")) == 0 {
			continue
		}

		decoded, derr := decodeLine(out[:0], line)
		if derr != nil {
			short := line[:min(recoverLen(line), len(line))]
			decoded, err = decodeLine(out[:0], short)
			if err != nil {
				return errorf(codecerr.ErrMalformed, "line %d: %v", lineNo, err)
			}
			d.logger().Warn("recovered damaged uuencoded line", "line", lineNo, "reason", derr)
		}
		out = decoded
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
}
