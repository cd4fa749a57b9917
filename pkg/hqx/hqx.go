// Package hqx implements the byte transforms underneath BinHex 4.0: the
// run-length encoding with 0x90 as marker, the 6-bit printable packing and
// the CRC-16 used for the header and fork checksums.
//
// Both transforms come as batch functions and as streaming stages. The
// streaming stages are chained by package binhex:
//
//	raw bytes -> RunLengthWriter -> Writer -> text
//	text -> Reader -> RunLengthReader -> raw bytes
package hqx

import (
	"errors"
	"fmt"
	"io"

	"github.com/birdayz/trydecode/pkg/codecerr"
)

const (
	// LineLength is the number of encoded characters per output line.
	LineLength = 64

	// EndMarker terminates (and, in BinHex files, introduces) encoded data.
	EndMarker = ':'

	alphabet = "!\"#$%&'()*+,-012345689@ABCDEFGHIJKLMNPQRSTUVXYZ[`abcdefhijklmpqr"
	invalid  = 0xff
)

var decodeMap [256]byte

func init() {
	for i := range decodeMap {
		decodeMap[i] = invalid
	}
	for i := 0; i < len(alphabet); i++ {
		decodeMap[alphabet[i]] = byte(i)
	}
}

// Encode packs b into the 6-bit alphabet. Leftover bits of a final partial
// group are padded with zeros.
func Encode(b []byte) []byte {
	out := make([]byte, 0, (len(b)*8+5)/6)
	var acc uint32
	bits := 0
	for _, c := range b {
		acc = acc<<8 | uint32(c)
		bits += 8
		for bits >= 6 {
			bits -= 6
			out = append(out, alphabet[acc>>bits&0x3f])
		}
		acc &= 1<<bits - 1
	}
	if bits > 0 {
		out = append(out, alphabet[acc<<(6-bits)&0x3f])
	}
	return out
}

// Decode unpacks 6-bit characters from b, skipping line breaks. It stops at
// EndMarker and reports done. If b ends with bits left over and no
// EndMarker was seen, Decode returns ErrIncomplete.
func Decode(b []byte) (out []byte, done bool, err error) {
	out = make([]byte, 0, len(b)*3/4)
	var acc uint32
	bits := 0
	for _, c := range b {
		if c == '\r' || c == '\n' {
			continue
		}
		if c == EndMarker {
			done = true
			break
		}
		v := decodeMap[c]
		if v == invalid {
			return nil, false, fmt.Errorf("%w: illegal character %q", codecerr.ErrMalformed, c)
		}
		acc = acc<<6 | uint32(v)
		bits += 6
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(acc>>bits))
			acc &= 1<<bits - 1
		}
	}
	if bits > 0 && !done {
		return nil, false, ErrIncomplete
	}
	return out, done, nil
}

// Writer packs everything written to it and emits CR-terminated lines. The
// first line is one character short to leave room for the leading colon the
// caller has already written.
type Writer struct {
	w       io.Writer
	raw     []byte
	encoded []byte
	lineLen int
}

// NewWriter returns a Writer emitting lines to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, lineLen: LineLength - 1}
}

func (e *Writer) Write(p []byte) (int, error) {
	e.raw = append(e.raw, p...)
	todo := len(e.raw) / 3 * 3
	if todo == 0 {
		return len(p), nil
	}
	e.encoded = append(e.encoded, Encode(e.raw[:todo])...)
	e.raw = append(e.raw[:0], e.raw[todo:]...)
	if err := e.flush(false); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (e *Writer) flush(final bool) error {
	first := 0
	for len(e.encoded)-first >= e.lineLen {
		last := first + e.lineLen
		if err := e.writeLine(e.encoded[first:last], '\r'); err != nil {
			return err
		}
		e.lineLen = LineLength
		first = last
	}
	e.encoded = append(e.encoded[:0], e.encoded[first:]...)
	if final {
		return e.writeLine(e.encoded, EndMarker, '\r')
	}
	return nil
}

func (e *Writer) writeLine(line []byte, tail ...byte) error {
	buf := make([]byte, 0, len(line)+len(tail))
	buf = append(buf, line...)
	buf = append(buf, tail...)
	_, err := e.w.Write(buf)
	return err
}

// Close encodes any partial group and writes the end marker. It does not
// close the underlying writer.
func (e *Writer) Close() error {
	if len(e.raw) > 0 {
		e.encoded = append(e.encoded, Encode(e.raw)...)
		e.raw = nil
	}
	return e.flush(true)
}

// Reader unpacks 6-bit text read from an underlying reader positioned just
// after the leading colon. Encoded data may arrive in chunks of any size.
type Reader struct {
	r         io.Reader
	done      bool
	exhausted bool
}

// NewReader returns a Reader decoding r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Done reports whether the end marker has been seen.
func (d *Reader) Done() bool {
	return d.done
}

// Next decodes at least n bytes, or fewer if the end marker comes first.
// Running out of input before the end marker is a truncation error.
func (d *Reader) Next(n int) ([]byte, error) {
	var out []byte
	want := n
	for want > 0 {
		if d.done {
			return out, nil
		}
		data, err := d.read((want + 2) / 3 * 4)
		if err != nil {
			return nil, err
		}
		var cur []byte
		for {
			cur, d.done, err = Decode(data)
			if err == nil {
				break
			}
			if !errors.Is(err, ErrIncomplete) {
				return nil, err
			}
			more, err := d.read(1)
			if err != nil {
				return nil, err
			}
			if len(more) == 0 {
				return nil, errPrematureEOF
			}
			data = append(data, more...)
		}
		out = append(out, cur...)
		want = n - len(out)
		if len(cur) == 0 && !d.done && d.exhausted {
			return nil, errPrematureEOF
		}
	}
	return out, nil
}

var errPrematureEOF = fmt.Errorf("%w: premature EOF on binhex data", codecerr.ErrTruncated)

func (d *Reader) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	k, err := io.ReadFull(d.r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		d.exhausted = true
		err = nil
	}
	return buf[:k], err
}
