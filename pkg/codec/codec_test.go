package codec

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/birdayz/trydecode/pkg/codecerr"
	"github.com/birdayz/trydecode/pkg/uu"
)

const printable = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ \t\n\r\x0b\x0c"

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDefaultOrder(t *testing.T) {
	r := Default(Options{Logger: quiet()})
	require.Equal(t, []string{
		"Base64", "Base32", "Base16", "Ascii85", "Base85", "Uuencoding",
		"BinHex", "ROT13", "MIME quoted-printable", "Percent-encoding", "HTML",
	}, r.Names())
	require.Equal(t, 11, r.Len())
}

func TestRoundTrip(t *testing.T) {
	binary := make([]byte, 256)
	for i := range binary {
		binary[i] = byte(i)
	}
	inputs := map[string][]byte{
		"printable": []byte(printable),
		"empty":     {},
		"binary":    binary,
	}
	textOnly := map[string]bool{"ROT13": true, "HTML": true}

	for _, c := range Default(Options{Logger: quiet()}).Codecs() {
		for name, in := range inputs {
			if name == "binary" && textOnly[c.Name()] {
				continue
			}
			t.Run(c.Name()+"/"+name, func(t *testing.T) {
				enc, err := c.Encode(in)
				require.NoError(t, err)
				dec, err := c.Decode(enc)
				require.NoError(t, err)
				require.Equal(t, string(in), string(dec))
			})
		}
	}
}

func TestKnownEncodings(t *testing.T) {
	r := Default(Options{Logger: quiet()})
	tests := []struct {
		codec string
		in    string
		want  string
	}{
		{codec: "Base64", in: "hello", want: "aGVsbG8="},
		{codec: "Base32", in: "hello", want: "NBSWY3DP"},
		{codec: "Base16", in: "hello", want: "68656C6C6F"},
		{codec: "Ascii85", in: "hello", want: "BOu!rDZ"},
		{codec: "Ascii85", in: "\x00\x00\x00\x00", want: "z"},
		{codec: "Base85", in: "hello", want: "Xk~0{Zv"},
		{codec: "Base85", in: "a", want: "VE"},
		{codec: "Base85", in: "\x00\x00\x00\x00", want: "00000"},
		{codec: "Base85", in: "\xff\xff\xff\xff", want: "|NsC0"},
		{codec: "Uuencoding", in: "abc", want: "begin 666 -\n#86)C\n \nend\n"},
		{codec: "ROT13", in: "Hello, World!", want: "Uryyb, Jbeyq!"},
		{codec: "MIME quoted-printable", in: "a=b", want: "a=3Db"},
		{codec: "Percent-encoding", in: "a b/c", want: "a%20b%2Fc"},
		{codec: "HTML", in: `<a href="x">&</a>`, want: "&lt;a href=&#34;x&#34;&gt;&amp;&lt;/a&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.codec+"/"+tt.in, func(t *testing.T) {
			c, ok := r.Lookup(tt.codec)
			require.True(t, ok)
			got, err := c.Encode([]byte(tt.in))
			require.NoError(t, err)
			require.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeErrorsAreDeclared(t *testing.T) {
	r := Default(Options{Logger: quiet()})
	tests := []struct {
		codec string
		in    string
	}{
		{codec: "Base64", in: "not base64!"},
		{codec: "Base32", in: "hello"},
		{codec: "Base16", in: "68656c6c6f"},
		{codec: "Base16", in: "ABC"},
		{codec: "Ascii85", in: "hello~"},
		{codec: "Base85", in: "|NsC1"},
		{codec: "Base85", in: "ab\"cd"},
		{codec: "Uuencoding", in: "hello"},
		{codec: "BinHex", in: "hello"},
		{codec: "BinHex", in: "(This file must be converted with BinHex 4.0)\r\r:!!!"},
		{codec: "ROT13", in: "\xff\xfe"},
		{codec: "MIME quoted-printable", in: "="},
		{codec: "Percent-encoding", in: "100%"},
		{codec: "HTML", in: "\xff"},
	}
	for _, tt := range tests {
		t.Run(tt.codec+"/"+tt.in, func(t *testing.T) {
			c, ok := r.Lookup(tt.codec)
			require.True(t, ok)
			_, err := c.Decode([]byte(tt.in))
			require.Error(t, err)
			require.True(t, codecerr.Declared(err), "undeclared error: %v", err)
		})
	}
}

func TestBinHexOptions(t *testing.T) {
	c := BinHex(BinHexOptions{Name: "x.txt", Creator: "ttxt"})
	enc, err := c.Encode([]byte("hi"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(enc), "(This file must be converted with BinHex 4.0)\r\r:"))

	_, err = BinHex(BinHexOptions{Type: "TOOLONG"}).Encode([]byte("hi"))
	require.ErrorIs(t, err, codecerr.ErrFormat)
}

func TestUuencodingOptions(t *testing.T) {
	c := Uuencoding(uu.EncodeOptions{Name: "f.bin", Mode: 0o644, Backtick: true}, quiet())
	enc, err := c.Encode([]byte("\x00\x00\x00"))
	require.NoError(t, err)
	require.Equal(t, "begin 644 f.bin\n#````\n`\nend\n", string(enc))
}

func TestNewRegistry(t *testing.T) {
	a := New("A", nil, nil)
	b := New("B", nil, nil)

	_, err := NewRegistry(a, nil)
	require.Error(t, err)
	_, err = NewRegistry(New("", nil, nil))
	require.Error(t, err)
	_, err = NewRegistry(a, b, New("A", nil, nil))
	require.Error(t, err)

	r, err := NewRegistry(b, a)
	require.NoError(t, err)
	require.Equal(t, []string{"B", "A"}, r.Names())

	// Callers cannot reorder the registry through the returned slice.
	cs := r.Codecs()
	cs[0] = a
	require.Equal(t, []string{"B", "A"}, r.Names())
}

func TestRegistryLookupAndFilters(t *testing.T) {
	r := Default(Options{Logger: quiet()})

	c, ok := r.Lookup("base64")
	require.True(t, ok)
	require.Equal(t, "Base64", c.Name())
	_, ok = r.Lookup("Base1024")
	require.False(t, ok)

	only, err := r.Only("html", "Base16", "BinHex")
	require.NoError(t, err)
	require.Equal(t, []string{"Base16", "BinHex", "HTML"}, only.Names())

	without, err := r.Without("ROT13", "HTML")
	require.NoError(t, err)
	require.Equal(t, 9, without.Len())
	_, ok = without.Lookup("ROT13")
	require.False(t, ok)
	require.Equal(t, 11, r.Len())

	_, err = r.Only("nope")
	require.ErrorIs(t, err, ErrUnknownCodec)
	_, err = r.Without("nope")
	require.ErrorIs(t, err, ErrUnknownCodec)
}
