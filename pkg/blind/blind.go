// Package blind runs unknown input through every codec of a registry and
// reports which codecs accept it.
//
// A codec "accepts" input when its strict decoder returns without error and
// produces something. No statistics or heuristics are involved: the report
// lists every codec whose parser did not reject the bytes.
package blind

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/birdayz/trydecode/pkg/codec"
	"github.com/birdayz/trydecode/pkg/codecerr"
)

// Status classifies the result of one codec against one input.
type Status int

const (
	// Failed means the codec rejected the input or produced nothing.
	Failed Status = iota
	// Decoded means the codec produced output different from the input.
	Decoded
	// Unchanged means the codec produced output identical to the input.
	Unchanged
)

func (s Status) String() string {
	switch s {
	case Decoded:
		return "decoded"
	case Unchanged:
		return "unchanged"
	default:
		return "failed"
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of one codec against one input.
type Outcome struct {
	Codec  string
	Status Status
	Output []byte
	Err    error
}

// Text renders the output for humans: as is when it is valid UTF-8, as a Go
// quoted string otherwise.
func (o Outcome) Text() string {
	if utf8.Valid(o.Output) {
		return string(o.Output)
	}
	return fmt.Sprintf("%q", o.Output)
}

// Reason explains a Failed outcome.
func (o Outcome) Reason() string {
	switch {
	case o.Status != Failed:
		return ""
	case o.Err != nil:
		return o.Err.Error()
	default:
		return "empty output"
	}
}

// Report holds one Outcome per codec, in registry order.
type Report struct {
	EmptyInput bool
	Outcomes   []Outcome
}

func (r *Report) filter(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

func names(outcomes []Outcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Codec
	}
	return out
}

// Decoded returns the outcomes of codecs that produced new output.
func (r *Report) Decoded() []Outcome {
	return r.filter(Decoded)
}

// Failed returns the names of codecs that rejected the input.
func (r *Report) Failed() []string {
	return names(r.filter(Failed))
}

// Unchanged returns the names of codecs whose output equalled the input.
func (r *Report) Unchanged() []string {
	return names(r.filter(Unchanged))
}

// WriteText writes the plain report: one aligned line per decoded codec,
// then the failed and unchanged codec lists.
func (r *Report) WriteText(w io.Writer) error {
	decoded := r.Decoded()
	width := 0
	for _, o := range decoded {
		width = max(width, utf8.RuneCountInString(o.Codec))
	}
	var b strings.Builder
	for _, o := range decoded {
		fmt.Fprintf(&b, "%-*s : %s\n", width, o.Codec, o.Text())
	}
	fmt.Fprintf(&b, "Failed to decode: %s\n", strings.Join(r.Failed(), ", "))
	fmt.Fprintf(&b, "Output same as input: %s\n", strings.Join(r.Unchanged(), ", "))
	_, err := io.WriteString(w, b.String())
	return err
}

// Engine runs inputs against a registry.
type Engine struct {
	registry *codec.Registry
	logger   *slog.Logger
}

// NewEngine returns an Engine over registry. A nil logger uses
// slog.Default().
func NewEngine(registry *codec.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: registry, logger: logger}
}

// Registry returns the registry the engine runs.
func (e *Engine) Registry() *codec.Registry {
	return e.registry
}

// DecodeBytes runs a single codec against input. Errors carrying a codecerr
// kind make a Failed outcome; any other error is returned, since it means
// the codec itself is broken.
func (e *Engine) DecodeBytes(input []byte, c codec.Codec) (Outcome, error) {
	o := Outcome{Codec: c.Name()}
	out, err := c.Decode(input)
	switch {
	case err != nil && !codecerr.Declared(err):
		return Outcome{}, fmt.Errorf("codec %s: %w", c.Name(), err)
	case err != nil:
		o.Status, o.Err = Failed, err
	case len(out) == 0:
		o.Status = Failed
	case bytes.Equal(out, input):
		o.Status, o.Output = Unchanged, out
	default:
		o.Status, o.Output = Decoded, out
	}
	e.logger.Debug("tried codec", "codec", o.Codec, "status", o.Status, "reason", o.Reason())
	return o, nil
}

// Decode runs every codec of the registry against input.
func (e *Engine) Decode(input []byte) (*Report, error) {
	r := &Report{EmptyInput: len(input) == 0}
	if r.EmptyInput {
		e.logger.Error("no input to decode")
	}
	for _, c := range e.registry.Codecs() {
		o, err := e.DecodeBytes(input, c)
		if err != nil {
			return nil, err
		}
		r.Outcomes = append(r.Outcomes, o)
	}
	e.logger.Info("decoded input", "bytes", len(input), "decoded", len(r.Decoded()), "failed", len(r.Failed()))
	return r, nil
}
