// Package binhex reads and writes Macintosh BinHex 4.0 files.
//
// A BinHex file carries a header (file name, type, creator, flags and the
// lengths of both forks), the data fork and the resource fork, each followed
// by a CRC-16. The byte stream is run-length encoded and packed into 6-bit
// printable characters by package hqx.
package binhex

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/birdayz/trydecode/pkg/codecerr"
)

// Banner is written in front of every encoded file.
const Banner = "(This file must be converted with BinHex 4.0)\r\r"

const (
	// MaxNameLen is the longest file name the header can carry.
	MaxNameLen = 63

	// fixed header bytes after the name: version, type, creator, flags,
	// data length, resource length.
	infoLen = 1 + 4 + 4 + 2 + 4 + 4
)

// FileInfo is the BinHex header.
type FileInfo struct {
	Name           string
	Type           string
	Creator        string
	Flags          uint16
	DataLength     uint32
	ResourceLength uint32
}

// File is a fully decoded BinHex file.
type File struct {
	FileInfo
	Data     []byte
	Resource []byte
}

// NewFileInfo builds a header for data the way the classic tools do for a
// plain file: type TEXT unless a NUL shows up in the first 512 bytes, unknown
// creator, no resource fork.
func NewFileInfo(name string, data []byte) FileInfo {
	typ := "TEXT"
	if bytes.IndexByte(data[:min(len(data), 512)], 0) >= 0 {
		typ = "????"
	}
	return FileInfo{
		Name:       strings.Replace(name, ":", "-", 1),
		Type:       typ,
		Creator:    "????",
		DataLength: uint32(len(data)),
	}
}

// Error is returned for every BinHex-level failure. It unwraps to one of the
// codecerr kinds.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return "binhex: " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// wrap lifts a pipeline error into an *Error. Errors outside the taxonomy
// are passed through untouched.
func wrap(err error) error {
	kind := codecerr.Kind(err)
	if kind == nil {
		return err
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Kind: kind, Msg: err.Error()}
}

var latin1 = charmap.ISO8859_1

func encodeName(name string) ([]byte, error) {
	b, err := latin1.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return nil, errorf(codecerr.ErrFormat, "file name %q is not latin-1", name)
	}
	if len(b) > MaxNameLen {
		return nil, errorf(codecerr.ErrFormat, "filename too long (%d bytes, max %d)", len(b), MaxNameLen)
	}
	return b, nil
}

func decodeName(b []byte) string {
	s, err := latin1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

func encodeTag(field, tag string) ([]byte, error) {
	b, err := latin1.NewEncoder().Bytes([]byte(tag))
	if err != nil || len(b) != 4 {
		return nil, errorf(codecerr.ErrFormat, "%s %q must be 4 latin-1 characters", field, tag)
	}
	return b, nil
}
