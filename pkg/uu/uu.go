// Package uu implements classic uuencoding: a "begin <mode> <name>" line, a
// run of length-prefixed 6-bit lines and an "end" line.
//
// Decoding is tolerant in the way traditional uudecode is: a data line that
// fails strict decoding is cut down to the length its first character
// implies and decoded again, with a warning logged.
package uu

import (
	"fmt"
)

const (
	// LineLen is the number of payload bytes per encoded line.
	LineLen = 45

	// DefaultName and DefaultMode are used when EncodeOptions leaves them
	// empty.
	DefaultName = "-"
	DefaultMode = 0o666

	offset = ' '
)

// Header is the content of the begin line.
type Header struct {
	Mode uint32
	Name string
}

// Error is returned for every uu-level failure. It unwraps to one of the
// codecerr kinds.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return "uu: " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// encodeLine appends the encoded form of src (at most LineLen bytes) to dst,
// length character and newline included.
func encodeLine(dst, src []byte, backtick bool) []byte {
	enc := func(v byte) byte {
		v &= 0x3f
		if backtick && v == 0 {
			return '`'
		}
		return v + offset
	}
	dst = append(dst, enc(byte(len(src))))
	for i := 0; i < len(src); i += 3 {
		var g [3]byte
		copy(g[:], src[i:])
		dst = append(dst,
			enc(g[0]>>2),
			enc(g[0]<<4|g[1]>>4),
			enc(g[1]<<2|g[2]>>6),
			enc(g[2]),
		)
	}
	return append(dst, '\n')
}

type lineError string

func (e lineError) Error() string { return string(e) }

const (
	errIllegalChar     lineError = "illegal char"
	errTrailingGarbage lineError = "trailing garbage"
)

// decodeLine strictly decodes one data line. Characters missing at the end of
// the line count as zero groups; whatever follows the encoded groups may only
// be padding or a line break.
func decodeLine(dst, line []byte) ([]byte, error) {
	var first byte
	if len(line) > 0 {
		first = line[0]
	}
	n := int((first - offset) & 0x3f)
	pos := 1

	var acc uint32
	bits := 0
	for n > 0 {
		var v byte
		if pos < len(line) && line[pos] != '\n' && line[pos] != '\r' {
			c := line[pos]
			if c < offset || c > offset+64 {
				return nil, errIllegalChar
			}
			v = (c - offset) & 0x3f
		}
		pos++
		acc = acc<<6 | uint32(v)
		bits += 6
		if bits >= 8 {
			bits -= 8
			dst = append(dst, byte(acc>>bits))
			acc &= 1<<bits - 1
			n--
		}
	}
	for ; pos < len(line); pos++ {
		switch line[pos] {
		case ' ', '`', '\n', '\r':
		default:
			return nil, errTrailingGarbage
		}
	}
	return dst, nil
}

// recoverLen is the number of leading characters of a damaged line that the
// length character accounts for.
func recoverLen(line []byte) int {
	return (int((line[0]-offset)&0x3f)*4 + 5) / 3
}
