package hqx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/birdayz/trydecode/pkg/codecerr"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestCRC(t *testing.T) {
	// CRC-16/XMODEM check value.
	require.Equal(t, uint16(0x31c3), CRC([]byte("123456789"), 0))
	require.Equal(t, uint16(0), CRC(nil, 0))

	// Incremental updates match a single pass.
	crc := CRC([]byte("1234"), 0)
	crc = CRC([]byte("56789"), crc)
	require.Equal(t, uint16(0x31c3), crc)
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "empty", in: nil, want: ""},
		{name: "zeros", in: []byte{0, 0, 0}, want: "!!!!"},
		{name: "ones", in: []byte{0xff, 0xff, 0xff}, want: "rrrr"},
		{name: "partial group", in: []byte{0xff}, want: "r`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, string(Encode(tt.in)))
		})
	}
}

func TestDecode(t *testing.T) {
	out, done, err := Decode([]byte("!!!!rrrr"))
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, []byte{0, 0, 0, 0xff, 0xff, 0xff}, out)

	out, done, err = Decode([]byte("!!\r\n!!:garbage"))
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, []byte{0, 0, 0}, out)

	_, _, err = Decode([]byte("!!!"))
	require.ErrorIs(t, err, ErrIncomplete)

	_, _, err = Decode([]byte("!!7!"))
	require.ErrorIs(t, err, codecerr.ErrMalformed)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := make([]byte, 256)
	for i := range in {
		in[i] = byte(i)
	}
	enc := append(Encode(in), EndMarker)
	out, done, err := Decode(enc)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, in, out)
}

func TestRLEEncode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{name: "plain", in: []byte("abc"), want: []byte("abc")},
		{name: "three is not a run", in: []byte("aaa"), want: []byte("aaa")},
		{name: "run", in: []byte("aaaaa"), want: []byte{'a', RunChar, 5}},
		{name: "literal marker", in: []byte{RunChar}, want: []byte{RunChar, 0}},
		{name: "repeated marker", in: []byte{RunChar, RunChar, RunChar, RunChar}, want: []byte{RunChar, 0, RunChar, 0, RunChar, 0, RunChar, 0}},
		{name: "long run splits", in: bytes.Repeat([]byte{'x'}, 300), want: []byte{'x', RunChar, 255, 'x', RunChar, 45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RLEEncode(tt.in)
			require.Equal(t, tt.want, got)

			back, err := RLEDecode(got)
			require.NoError(t, err)
			require.Equal(t, tt.in, back)
		})
	}
}

func TestRLEDecodeErrors(t *testing.T) {
	_, err := RLEDecode([]byte{RunChar, 5})
	require.ErrorIs(t, err, codecerr.ErrMalformed)

	_, err = RLEDecode([]byte{'a', RunChar})
	require.ErrorIs(t, err, ErrIncomplete)

	out, err := RLEDecode(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestWriterLineWrapping(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write(bytes.Repeat([]byte{0}, 96))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	lines := strings.Split(buf.String(), "\r")
	// 96 bytes pack into 128 characters: 63 + 64 + 1, then the marker.
	require.Len(t, lines, 4)
	require.Len(t, lines[0], 63)
	require.Len(t, lines[1], 64)
	require.Equal(t, "!:", lines[2])
	require.Equal(t, "", lines[3])
}

func TestStreamingPipeline(t *testing.T) {
	in := append(bytes.Repeat([]byte{'z'}, 144), RunChar, 'q', RunChar, RunChar)
	in = append(in, bytes.Repeat([]byte("hello binhex "), 500)...)
	in = append(in, bytes.Repeat([]byte{0}, 40000)...)

	var buf bytes.Buffer
	rw := NewRunLengthWriter(NewWriter(&buf))
	for chunk := range bytesChunks(in, 777) {
		_, err := rw.Write(chunk)
		require.NoError(t, err)
	}
	require.NoError(t, rw.Close())

	for _, step := range []int{1, 2, 5, 64, 4096} {
		rr := NewRunLengthReader(NewReader(bytes.NewReader(buf.Bytes())))
		var out []byte
		for len(out) < len(in) {
			got, err := rr.Next(step)
			require.NoError(t, err)
			require.NotEmpty(t, got, "step %d stalled at %d", step, len(out))
			out = append(out, got...)
		}
		require.Equal(t, in, out, "step %d", step)
	}
}

func TestReaderPrematureEOF(t *testing.T) {
	enc := Encode(bytes.Repeat([]byte("abc"), 10))
	r := NewReader(bytes.NewReader(enc[:len(enc)/2]))
	_, err := r.Next(30)
	require.ErrorIs(t, err, codecerr.ErrTruncated)
}

func TestRunLengthWriterBuffers(t *testing.T) {
	buf := nopCloser{&bytes.Buffer{}}
	rw := NewRunLengthWriter(buf)
	_, err := rw.Write([]byte("abc"))
	require.NoError(t, err)
	require.Zero(t, buf.Len())
	require.NoError(t, rw.Close())
	require.Equal(t, "abc", buf.String())
}

func bytesChunks(b []byte, n int) func(func([]byte) bool) {
	return func(yield func([]byte) bool) {
		for len(b) > 0 {
			k := min(n, len(b))
			if !yield(b[:k]) {
				return
			}
			b = b[k:]
		}
	}
}
