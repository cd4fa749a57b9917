// Package codecerr defines the error kinds a codec is allowed to return.
//
// Every error a codec hands back to its caller must wrap exactly one of the
// sentinels below. Callers that probe many codecs against unknown input treat
// these kinds as "this codec does not apply"; anything else is a bug in the
// codec and is surfaced as such.
package codecerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrFormat is returned for malformed container structure: bad header
	// fields, missing envelope lines, operations invoked in the wrong state.
	ErrFormat = errors.New("format error")

	// ErrChecksum is returned when a stored checksum does not match the data.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrTruncated is returned when input ends before a terminator or a
	// declared length was satisfied.
	ErrTruncated = errors.New("truncated input")

	// ErrUnsafePath is returned when a container-supplied name would place
	// output outside the intended directory.
	ErrUnsafePath = errors.New("unsafe output path")

	// ErrMalformed is the catch-all for invalid low-level encodings.
	ErrMalformed = errors.New("malformed encoding")
)

var kinds = []error{ErrFormat, ErrChecksum, ErrTruncated, ErrUnsafePath, ErrMalformed}

// Kind returns the sentinel err wraps, or nil if err is not a declared codec
// error.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Declared reports whether err wraps one of the sentinel kinds.
func Declared(err error) bool {
	return Kind(err) != nil
}

// Wrap tags err with kind. Errors already carrying a kind are returned as-is.
func Wrap(kind, err error) error {
	if err == nil || Declared(err) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
