package blind

import (
	"bytes"
	"fmt"
)

// PrintableASCII is the round-trip corpus: digits, letters, punctuation and
// whitespace.
const PrintableASCII = "0123456789" +
	"abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
	" \t\n\r\x0b\x0c"

// RoundTrip is the self-test result for one codec.
type RoundTrip struct {
	Codec   string
	Encoded []byte
	Report  *Report
	OK      bool
}

// SelfTest encodes corpus with every codec, blind-decodes the encoded form
// and checks that the encoding codec gives corpus back.
func (e *Engine) SelfTest(corpus []byte) ([]RoundTrip, error) {
	var results []RoundTrip
	for _, c := range e.registry.Codecs() {
		enc, err := c.Encode(corpus)
		if err != nil {
			return results, fmt.Errorf("encode with %s: %w", c.Name(), err)
		}
		report, err := e.Decode(enc)
		if err != nil {
			return results, err
		}
		back, err := e.DecodeBytes(enc, c)
		if err != nil {
			return results, err
		}
		ok := back.Status != Failed && bytes.Equal(back.Output, corpus)
		if !ok {
			e.logger.Error("round trip failed", "codec", c.Name(), "reason", back.Reason())
		}
		results = append(results, RoundTrip{Codec: c.Name(), Encoded: enc, Report: report, OK: ok})
	}
	return results, nil
}
