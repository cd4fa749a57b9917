package binhex

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/birdayz/trydecode/pkg/codecerr"
	"github.com/birdayz/trydecode/pkg/hqx"
)

type readState int

const (
	readHeader readState = iota
	readData
	readClosed
)

// skipChunk bounds how much of an unread fork is decoded at once when it is
// skipped.
const skipChunk = 128000

// Reader decodes one BinHex file. Read returns data fork bytes; the resource
// fork is available through ReadResource once the data fork is done. Every
// fork checksum is verified before the next section is read.
type Reader struct {
	in       *hqx.RunLengthReader
	info     FileInfo
	crc      uint16
	state    readState
	dataLeft int64
	rsrcLeft int64
}

// NewReader skips everything up to the first colon in r and reads the
// header.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	if _, err := br.ReadBytes(hqx.EndMarker); err != nil {
		if err == io.EOF {
			return nil, errorf(codecerr.ErrFormat, "no binhex data found")
		}
		return nil, err
	}
	hr := &Reader{in: hqx.NewRunLengthReader(hqx.NewReader(br))}
	if err := hr.readHeader(); err != nil {
		return nil, wrap(err)
	}
	return hr, nil
}

// Info returns the decoded header.
func (r *Reader) Info() FileInfo {
	return r.info
}

func (r *Reader) readHeader() error {
	nl, err := r.read(1)
	if err != nil {
		return err
	}
	rest, err := r.read(int(nl[0]) + infoLen)
	if err != nil {
		return err
	}
	name, rest := rest[:nl[0]], rest[nl[0]:]
	rest = rest[1:] // version
	r.info = FileInfo{
		Name:           decodeName(name),
		Type:           decodeName(rest[0:4]),
		Creator:        decodeName(rest[4:8]),
		Flags:          binary.BigEndian.Uint16(rest[8:10]),
		DataLength:     binary.BigEndian.Uint32(rest[10:14]),
		ResourceLength: binary.BigEndian.Uint32(rest[14:18]),
	}
	if err := r.checkCRC(); err != nil {
		return err
	}
	r.dataLeft = int64(r.info.DataLength)
	r.rsrcLeft = int64(r.info.ResourceLength)
	r.state = readHeader
	return nil
}

// read returns exactly n decoded bytes and folds them into the running CRC.
func (r *Reader) read(n int) ([]byte, error) {
	b, err := r.readFull(n)
	if err != nil {
		return nil, err
	}
	r.crc = hqx.CRC(b, r.crc)
	return b, nil
}

func (r *Reader) readFull(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		chunk, err := r.in.Next(n - len(out))
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return nil, errorf(codecerr.ErrTruncated, "premature EOF on binhex data")
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (r *Reader) checkCRC() error {
	b, err := r.readFull(2)
	if err != nil {
		return err
	}
	got := binary.BigEndian.Uint16(b)
	if got != r.crc {
		return errorf(codecerr.ErrChecksum, "CRC error, computed %x, read %x", r.crc, got)
	}
	r.crc = 0
	return nil
}

// Read reads from the data fork. It returns io.EOF once DataLength bytes have
// been read; the fork checksum is verified by CloseData.
func (r *Reader) Read(p []byte) (int, error) {
	if r.state != readHeader {
		return 0, errorf(codecerr.ErrFormat, "reading data at the wrong time")
	}
	return r.readFork(p, &r.dataLeft)
}

func (r *Reader) readFork(p []byte, left *int64) (int, error) {
	if *left == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := int(min(int64(len(p)), *left))
	b, err := r.read(n)
	if err != nil {
		return 0, wrap(err)
	}
	*left -= int64(n)
	return copy(p, b), nil
}

// CloseData skips whatever is left of the data fork and verifies its
// checksum.
func (r *Reader) CloseData() error {
	if r.state != readHeader {
		return errorf(codecerr.ErrFormat, "closing data fork at the wrong time")
	}
	if err := r.skip(&r.dataLeft); err != nil {
		return err
	}
	if err := r.checkCRC(); err != nil {
		return wrap(err)
	}
	r.state = readData
	return nil
}

func (r *Reader) skip(left *int64) error {
	for *left > 0 {
		n := int(min(*left, skipChunk))
		if _, err := r.read(n); err != nil {
			return wrap(err)
		}
		*left -= int64(n)
	}
	return nil
}

// ReadResource reads from the resource fork, closing the data fork first if
// it is still open.
func (r *Reader) ReadResource(p []byte) (int, error) {
	if r.state == readHeader {
		if err := r.CloseData(); err != nil {
			return 0, err
		}
	}
	if r.state != readData {
		return 0, errorf(codecerr.ErrFormat, "reading resource data at the wrong time")
	}
	return r.readFork(p, &r.rsrcLeft)
}

// Close skips any unread fork data and verifies the remaining checksums.
// Closing an already closed Reader is a no-op.
func (r *Reader) Close() error {
	if r.state == readClosed {
		return nil
	}
	if r.state == readHeader {
		if err := r.CloseData(); err != nil {
			return err
		}
	}
	if err := r.skip(&r.rsrcLeft); err != nil {
		return err
	}
	if err := r.checkCRC(); err != nil {
		return wrap(err)
	}
	r.state = readClosed
	return nil
}

type resourceReader struct{ *Reader }

func (r resourceReader) Read(p []byte) (int, error) {
	return r.ReadResource(p)
}

// Decode decodes a complete BinHex file held in memory.
func Decode(b []byte) (*File, error) {
	r, err := NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := r.CloseData(); err != nil {
		return nil, err
	}
	rsrc, err := io.ReadAll(resourceReader{r})
	if err != nil {
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return &File{FileInfo: r.Info(), Data: data, Resource: rsrc}, nil
}

// Encode encodes f. The fork lengths in the header are taken from Data and
// Resource.
func Encode(f File) ([]byte, error) {
	info := f.FileInfo
	info.DataLength = uint32(len(f.Data))
	info.ResourceLength = uint32(len(f.Resource))

	var buf bytes.Buffer
	w, err := NewWriter(&buf, info)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(f.Data); err != nil {
		return nil, err
	}
	if _, err := w.WriteResource(f.Resource); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
