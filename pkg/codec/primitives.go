package codec

import (
	"bytes"
	"encoding/ascii85"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"mime/quotedprintable"
	"net/url"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/birdayz/trydecode/pkg/codecerr"
)

// Base64 is RFC 4648 base64 with the standard alphabet and padding.
func Base64() Codec {
	return New("Base64",
		func(b []byte) ([]byte, error) {
			out := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
			base64.StdEncoding.Encode(out, b)
			return out, nil
		},
		func(b []byte) ([]byte, error) {
			out := make([]byte, base64.StdEncoding.DecodedLen(len(b)))
			n, err := base64.StdEncoding.Decode(out, b)
			if err != nil {
				return nil, malformed("base64", err)
			}
			return out[:n], nil
		},
	)
}

// Base32 is RFC 4648 base32 with the standard alphabet and padding.
func Base32() Codec {
	return New("Base32",
		func(b []byte) ([]byte, error) {
			out := make([]byte, base32.StdEncoding.EncodedLen(len(b)))
			base32.StdEncoding.Encode(out, b)
			return out, nil
		},
		func(b []byte) ([]byte, error) {
			out := make([]byte, base32.StdEncoding.DecodedLen(len(b)))
			n, err := base32.StdEncoding.Decode(out, b)
			if err != nil {
				return nil, malformed("base32", err)
			}
			return out[:n], nil
		},
	)
}

// Base16 is RFC 4648 base16: upper-case hex digits only.
func Base16() Codec {
	return New("Base16",
		func(b []byte) ([]byte, error) {
			return bytes.ToUpper([]byte(hex.EncodeToString(b))), nil
		},
		func(b []byte) ([]byte, error) {
			for i, c := range b {
				if !('0' <= c && c <= '9' || 'A' <= c && c <= 'F') {
					return nil, fmt.Errorf("%w: base16: non-base16 digit %q at offset %d", codecerr.ErrMalformed, c, i)
				}
			}
			out := make([]byte, hex.DecodedLen(len(b)))
			if _, err := hex.Decode(out, b); err != nil {
				return nil, malformed("base16", err)
			}
			return out, nil
		},
	)
}

// Ascii85 is the btoa/Adobe alphabet without the <~ ~> framing.
func Ascii85() Codec {
	return New("Ascii85",
		func(b []byte) ([]byte, error) {
			out := make([]byte, ascii85.MaxEncodedLen(len(b)))
			n := ascii85.Encode(out, b)
			return out[:n], nil
		},
		func(b []byte) ([]byte, error) {
			// 'z' expands a single character to four bytes.
			out := make([]byte, 4*len(b))
			n, _, err := ascii85.Decode(out, b, true)
			if err != nil {
				return nil, malformed("ascii85", err)
			}
			return out[:n], nil
		},
	)
}

// Base85 is the RFC 1924 alphabet.
func Base85() Codec {
	return New("Base85",
		func(b []byte) ([]byte, error) {
			return base85Encode(b), nil
		},
		base85DecodeBytes,
	)
}

// ROT13 rotates ASCII letters by 13 places. Input must be valid UTF-8.
func ROT13() Codec {
	return New("ROT13", rot13, rot13)
}

func rot13(b []byte) ([]byte, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: rot13: input is not valid UTF-8", codecerr.ErrMalformed)
	}
	out := make([]byte, len(b))
	for i, c := range b {
		switch {
		case 'a' <= c && c <= 'z':
			c = 'a' + (c-'a'+13)%26
		case 'A' <= c && c <= 'Z':
			c = 'A' + (c-'A'+13)%26
		}
		out[i] = c
	}
	return out, nil
}

// QuotedPrintable is MIME quoted-printable (RFC 2045). Line breaks in the
// input are encoded, so arbitrary bytes survive a round trip.
func QuotedPrintable() Codec {
	return New("MIME quoted-printable",
		func(b []byte) ([]byte, error) {
			var buf bytes.Buffer
			w := quotedprintable.NewWriter(&buf)
			w.Binary = true
			if _, err := w.Write(b); err != nil {
				return nil, err
			}
			if err := w.Close(); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
		func(b []byte) ([]byte, error) {
			out, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(b)))
			if err != nil {
				return nil, malformed("quoted-printable", err)
			}
			return out, nil
		},
	)
}

// PercentEncoding is RFC 3986 percent-encoding of a path segment.
func PercentEncoding() Codec {
	return New("Percent-encoding",
		func(b []byte) ([]byte, error) {
			return []byte(url.PathEscape(string(b))), nil
		},
		func(b []byte) ([]byte, error) {
			s, err := url.PathUnescape(string(b))
			if err != nil {
				return nil, malformed("percent-encoding", err)
			}
			return []byte(s), nil
		},
	)
}

// HTML escapes and unescapes HTML character references. Input must be valid
// UTF-8.
func HTML() Codec {
	return New("HTML",
		func(b []byte) ([]byte, error) {
			if !utf8.Valid(b) {
				return nil, fmt.Errorf("%w: html: input is not valid UTF-8", codecerr.ErrMalformed)
			}
			return []byte(html.EscapeString(string(b))), nil
		},
		func(b []byte) ([]byte, error) {
			if !utf8.Valid(b) {
				return nil, fmt.Errorf("%w: html: input is not valid UTF-8", codecerr.ErrMalformed)
			}
			return []byte(html.UnescapeString(string(b))), nil
		},
	)
}

func malformed(codec string, err error) error {
	return fmt.Errorf("%w: %s: %w", codecerr.ErrMalformed, codec, err)
}
