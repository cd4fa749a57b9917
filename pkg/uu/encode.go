package uu

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/birdayz/trydecode/pkg/codecerr"
)

// EncodeOptions control the begin line and the padding character.
type EncodeOptions struct {
	Name     string
	Mode     uint32
	Backtick bool
}

var nameEscaper = strings.NewReplacer("\n", `\n`, "\r", `\r`)

func (o EncodeOptions) header() (string, error) {
	name := o.Name
	if name == "" {
		name = DefaultName
	}
	mode := o.Mode
	if mode == 0 {
		mode = DefaultMode
	}
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			return "", errorf(codecerr.ErrFormat, "file name %q is not ASCII", name)
		}
	}
	return fmt.Sprintf("begin %o %s\n", mode&0o777, nameEscaper.Replace(name)), nil
}

// Encode reads r to the end and writes it to w as a uuencoded file.
func Encode(w io.Writer, r io.Reader, opts EncodeOptions) error {
	hdr, err := opts.header()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, hdr); err != nil {
		return err
	}

	chunk := make([]byte, LineLen)
	line := make([]byte, 0, 2+LineLen/3*4)
	for {
		n, err := io.ReadFull(r, chunk)
		if n > 0 {
			line = encodeLine(line[:0], chunk[:n], opts.Backtick)
			if _, werr := w.Write(line); werr != nil {
				return werr
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return err
		}
	}

	trailer := " \nend\n"
	if opts.Backtick {
		trailer = "`\nend\n"
	}
	_, err = io.WriteString(w, trailer)
	return err
}

// EncodeBytes is Encode over an in-memory buffer.
func EncodeBytes(b []byte, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, bytes.NewReader(b), opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
