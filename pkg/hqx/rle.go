package hqx

import (
	"errors"
	"fmt"
	"io"

	"github.com/birdayz/trydecode/pkg/codecerr"
)

const (
	// RunChar marks a run (followed by a count) or, followed by zero, a
	// literal 0x90 byte.
	RunChar = 0x90

	// FlushThreshold is the amount of input RunLengthWriter buffers before
	// encoding it.
	FlushThreshold = 32768

	maxRun = 255
)

// ErrIncomplete is returned by the batch decoders when input stops in the
// middle of an encoded unit. Streaming readers use it to ask for more input.
var ErrIncomplete = errors.New("hqx: incomplete data")

// RLEEncode run-length encodes b. Runs of more than three identical bytes
// become (byte, RunChar, count); every literal RunChar becomes (RunChar, 0).
func RLEEncode(b []byte) []byte {
	out := make([]byte, 0, len(b)+len(b)/8)
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == RunChar {
			out = append(out, RunChar, 0)
			continue
		}
		end := i + 1
		for end < len(b) && b[end] == c && end < i+maxRun {
			end++
		}
		if end-i > 3 {
			out = append(out, c, RunChar, byte(end-i))
			i = end - 1
			continue
		}
		out = append(out, c)
	}
	return out
}

// RLEDecode reverses RLEEncode. A run code with no byte before it is
// malformed; input ending right after a RunChar returns ErrIncomplete.
func RLEDecode(b []byte) ([]byte, error) {
	var s runState
	out, rest, err := s.decode(make([]byte, 0, len(b)), b)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, ErrIncomplete
	}
	return out, nil
}

// runState carries the last decoded byte across chunks so a run code at the
// start of a chunk can refer to it.
type runState struct {
	prev    byte
	started bool
}

// decode appends the expansion of b to dst. A trailing RunChar whose second
// byte has not arrived yet is returned as rest.
func (s *runState) decode(dst, b []byte) (out, rest []byte, err error) {
	for i := 0; i < len(b); {
		c := b[i]
		if c != RunChar {
			dst = s.emit(dst, c)
			i++
			continue
		}
		if i+1 >= len(b) {
			return dst, b[i:], nil
		}
		n := b[i+1]
		i += 2
		if n == 0 {
			dst = s.emit(dst, RunChar)
			continue
		}
		if !s.started {
			return nil, nil, fmt.Errorf("%w: orphaned run code at start", codecerr.ErrMalformed)
		}
		for ; n > 1; n-- {
			dst = append(dst, s.prev)
		}
	}
	return dst, nil, nil
}

func (s *runState) emit(dst []byte, c byte) []byte {
	s.prev = c
	s.started = true
	return append(dst, c)
}

// RunLengthWriter run-length encodes everything written to it and passes the
// result to the next stage of the pipeline.
type RunLengthWriter struct {
	w   io.WriteCloser
	buf []byte
}

// NewRunLengthWriter returns a RunLengthWriter feeding w. Closing the
// RunLengthWriter closes w.
func NewRunLengthWriter(w io.WriteCloser) *RunLengthWriter {
	return &RunLengthWriter{w: w}
}

func (r *RunLengthWriter) Write(p []byte) (int, error) {
	r.buf = append(r.buf, p...)
	if len(r.buf) < FlushThreshold {
		return len(p), nil
	}
	if err := r.flush(); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (r *RunLengthWriter) flush() error {
	if len(r.buf) == 0 {
		return nil
	}
	_, err := r.w.Write(RLEEncode(r.buf))
	r.buf = r.buf[:0]
	return err
}

// Close encodes whatever is buffered and closes the downstream writer.
func (r *RunLengthWriter) Close() error {
	err := r.flush()
	if cerr := r.w.Close(); err == nil {
		err = cerr
	}
	return err
}

// RunLengthReader expands run-length encoded data read from an HQX Reader.
// A run code split across two reads is held back until its count arrives.
type RunLengthReader struct {
	src     *Reader
	state   runState
	pending []byte
	post    []byte
}

// NewRunLengthReader returns a RunLengthReader decoding src.
func NewRunLengthReader(src *Reader) *RunLengthReader {
	return &RunLengthReader{src: src}
}

// Next returns up to n decoded bytes. It may return fewer, and returns an
// empty slice once the source is exhausted.
func (r *RunLengthReader) Next(n int) ([]byte, error) {
	if n > len(r.post) {
		if err := r.fill(n - len(r.post)); err != nil {
			return nil, err
		}
	}
	if n > len(r.post) {
		n = len(r.post)
	}
	out := r.post[:n:n]
	r.post = r.post[n:]
	return out, nil
}

func (r *RunLengthReader) fill(want int) error {
	chunk, err := r.src.Next(want + 4)
	if err != nil {
		return err
	}
	in := append(r.pending, chunk...)
	r.pending = nil

	out, rest, err := r.state.decode(r.post, in)
	if err != nil {
		return err
	}
	r.post = out
	if len(rest) > 0 {
		if r.src.Done() {
			return fmt.Errorf("%w: data ends inside a run-length code", codecerr.ErrTruncated)
		}
		r.pending = append([]byte(nil), rest...)
	}
	return nil
}
