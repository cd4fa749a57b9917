package binhex

import (
	"encoding/binary"
	"io"

	"github.com/birdayz/trydecode/pkg/codecerr"
	"github.com/birdayz/trydecode/pkg/hqx"
)

type writeState int

const (
	writeHeader writeState = iota // header written, data fork open
	writeData                     // data fork closed, resource fork open
	writeClosed
)

// Writer encodes one BinHex file. Data fork bytes go through Write, resource
// fork bytes through WriteResource. The declared lengths in FileInfo must
// match what is written.
type Writer struct {
	out      *hqx.RunLengthWriter
	crc      uint16
	state    writeState
	dataLeft int64
	rsrcLeft int64
}

// NewWriter writes the banner and header for info to w.
func NewWriter(w io.Writer, info FileInfo) (*Writer, error) {
	name, err := encodeName(info.Name)
	if err != nil {
		return nil, err
	}
	typ, err := encodeTag("type", info.Type)
	if err != nil {
		return nil, err
	}
	creator, err := encodeTag("creator", info.Creator)
	if err != nil {
		return nil, err
	}

	if _, err := io.WriteString(w, Banner+string(hqx.EndMarker)); err != nil {
		return nil, err
	}
	bw := &Writer{
		out:      hqx.NewRunLengthWriter(hqx.NewWriter(w)),
		dataLeft: int64(info.DataLength),
		rsrcLeft: int64(info.ResourceLength),
	}

	hdr := make([]byte, 0, 1+len(name)+infoLen)
	hdr = append(hdr, byte(len(name)))
	hdr = append(hdr, name...)
	hdr = append(hdr, 0)
	hdr = append(hdr, typ...)
	hdr = append(hdr, creator...)
	hdr = binary.BigEndian.AppendUint16(hdr, info.Flags)
	hdr = binary.BigEndian.AppendUint32(hdr, info.DataLength)
	hdr = binary.BigEndian.AppendUint32(hdr, info.ResourceLength)
	if err := bw.write(hdr); err != nil {
		return nil, err
	}
	if err := bw.writeCRC(); err != nil {
		return nil, err
	}
	bw.state = writeHeader
	return bw, nil
}

func (w *Writer) write(p []byte) error {
	w.crc = hqx.CRC(p, w.crc)
	_, err := w.out.Write(p)
	return err
}

func (w *Writer) writeCRC() error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], w.crc)
	w.crc = 0
	_, err := w.out.Write(b[:])
	return err
}

// Write appends p to the data fork.
func (w *Writer) Write(p []byte) (int, error) {
	if w.state != writeHeader {
		return 0, errorf(codecerr.ErrFormat, "writing data at the wrong time")
	}
	w.dataLeft -= int64(len(p))
	if err := w.write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// CloseData ends the data fork and writes its checksum.
func (w *Writer) CloseData() error {
	if w.state != writeHeader {
		return errorf(codecerr.ErrFormat, "closing data fork at the wrong time")
	}
	if w.dataLeft != 0 {
		return errorf(codecerr.ErrFormat, "incorrect data size, diff=%d", w.dataLeft)
	}
	if err := w.writeCRC(); err != nil {
		return err
	}
	w.state = writeData
	return nil
}

// WriteResource appends p to the resource fork, closing the data fork first
// if it is still open.
func (w *Writer) WriteResource(p []byte) (int, error) {
	if w.state == writeHeader {
		if err := w.CloseData(); err != nil {
			return 0, err
		}
	}
	if w.state != writeData {
		return 0, errorf(codecerr.ErrFormat, "writing resource data at the wrong time")
	}
	w.rsrcLeft -= int64(len(p))
	if err := w.write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close writes the final checksum and the end marker. Closing an already
// closed Writer is a no-op.
func (w *Writer) Close() error {
	if w.state == writeClosed {
		return nil
	}
	err := w.finish()
	w.state = writeClosed
	if cerr := w.out.Close(); err == nil {
		err = cerr
	}
	return err
}

func (w *Writer) finish() error {
	if w.state == writeHeader {
		if err := w.CloseData(); err != nil {
			return err
		}
	}
	if w.rsrcLeft != 0 {
		return errorf(codecerr.ErrFormat, "incorrect resource data size, diff=%d", w.rsrcLeft)
	}
	return w.writeCRC()
}
