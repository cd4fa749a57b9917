package uu

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/birdayz/trydecode/pkg/codecerr"
	"github.com/birdayz/trydecode/pkg/outpath"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts EncodeOptions
		want string
	}{
		{name: "defaults", in: "abc", want: "begin 666 -\n#86)C\n \nend\n"},
		{name: "empty", in: "", want: "begin 666 -\n \nend\n"},
		{name: "name and mode", in: "abc", opts: EncodeOptions{Name: "x.txt", Mode: 0o100644}, want: "begin 644 x.txt\n#86)C\n \nend\n"},
		{name: "escaped name", in: "", opts: EncodeOptions{Name: "a\nb\rc"}, want: "begin 666 a\\nb\\rc\n \nend\n"},
		{name: "backtick", in: "\x00\x00\x00", opts: EncodeOptions{Backtick: true}, want: "begin 666 -\n#````\n`\nend\n"},
		{name: "no backtick", in: "\x00\x00\x00", want: "begin 666 -\n#    \n \nend\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeBytes([]byte(tt.in), tt.opts)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeLineLength(t *testing.T) {
	got, err := EncodeBytes(bytes.Repeat([]byte("x"), 100), EncodeOptions{})
	require.NoError(t, err)
	lines := strings.Split(string(got), "\n")
	// begin, 45, 45, 10, terminator, end, trailing empty
	require.Len(t, lines, 7)
	require.Equal(t, byte(' '+45), lines[1][0])
	require.Len(t, lines[1], 61)
	require.Equal(t, byte(' '+10), lines[3][0])
}

func TestEncodeRejectsNonASCIIName(t *testing.T) {
	_, err := EncodeBytes([]byte("x"), EncodeOptions{Name: "naïve"})
	require.ErrorIs(t, err, codecerr.ErrFormat)
}

func TestRoundTrip(t *testing.T) {
	in := make([]byte, 1000)
	for i := range in {
		in[i] = byte(i * 7)
	}
	for _, backtick := range []bool{false, true} {
		enc, err := EncodeBytes(in, EncodeOptions{Name: "blob", Mode: 0o600, Backtick: backtick})
		require.NoError(t, err)

		var d Decoder
		var out bytes.Buffer
		hdr, err := d.Decode(&out, bytes.NewReader(enc))
		require.NoError(t, err)
		require.Equal(t, Header{Mode: 0o600, Name: "blob"}, hdr)
		require.Equal(t, in, out.Bytes())
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "begin 644 x\n#86)C\n \nend\n", want: "abc"},
		{name: "crlf", in: "begin 644 x\r\n#86)C\r\n \r\nend\r\n", want: "abc"},
		{name: "leading text", in: "Subject: hi\n\nbegin 644 x\n#86)C\nend\n", want: "abc"},
		{name: "bad begin lines skipped", in: "begin here\nbegin 9x y\nbeginning 644 z\nbegin 644 ok\n#86)C\n \nend\n", want: "abc"},
		{name: "blank lines skipped", in: "begin 644 x\n\n#86)C\n\n \nend\n", want: "abc"},
		{name: "missing chars are zero", in: "begin 644 x\n#86\n \nend\n", want: "a`\x00"},
		{name: "end without newline", in: "begin 644 x\n#86)C\nend", want: "abc"},
		{name: "no begin", in: "hello\nworld\n", wantErr: codecerr.ErrFormat},
		{name: "empty", in: "", wantErr: codecerr.ErrFormat},
		{name: "truncated", in: "begin 644 x\n#86)C\n", wantErr: codecerr.ErrTruncated},
		{name: "illegal char", in: "begin 644 x\n#8\x016C\n \nend\n", wantErr: codecerr.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Decoder{}
			got, err := d.DecodeBytes([]byte(tt.in))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var uuErr *Error
				require.ErrorAs(t, err, &uuErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeRecoversDamagedLine(t *testing.T) {
	var logs bytes.Buffer
	d := &Decoder{Logger: slog.New(slog.NewTextHandler(&logs, nil))}

	got, err := d.DecodeBytes([]byte("begin 644 x\n#86)CXYZ\n \nend\n"))
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
	require.Contains(t, logs.String(), "recovered damaged uuencoded line")
	require.Contains(t, logs.String(), "trailing garbage")
}

func TestDecodeToDir(t *testing.T) {
	dir := t.TempDir()
	d := &Decoder{}

	path, err := d.DecodeToDir(dir, strings.NewReader("begin 600 out.txt\n#86)C\n \nend\n"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "out.txt"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	// Never overwrites.
	_, err = d.DecodeToDir(dir, strings.NewReader("begin 600 out.txt\n#>'EZ\n \nend\n"))
	require.ErrorIs(t, err, outpath.ErrExists)
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))
}

func TestDecodeToDirRejectsTraversal(t *testing.T) {
	for _, name := range []string{"../../etc/passwd", "/etc/passwd", "a/../../b"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			d := &Decoder{}
			_, err := d.DecodeToDir(dir, strings.NewReader("begin 644 "+name+"\n#86)C\n \nend\n"))
			require.ErrorIs(t, err, codecerr.ErrUnsafePath)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Empty(t, entries)
		})
	}
}

func TestDecodeToDirRemovesPartialFile(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "no end line", in: "begin 644 out.txt\n#86)C\n", wantErr: codecerr.ErrTruncated},
		{name: "bad line", in: "begin 644 out.txt\n#86)C\n#~~~~\n \nend\n", wantErr: codecerr.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			d := &Decoder{}
			path, err := d.DecodeToDir(dir, strings.NewReader(tt.in))
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, path)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Empty(t, entries)

			// A later good file with the same name still goes through.
			_, err = d.DecodeToDir(dir, strings.NewReader("begin 644 out.txt\n#86)C\n \nend\n"))
			require.NoError(t, err)
		})
	}
}

func TestDecodeToDirDashWithoutStdout(t *testing.T) {
	dir := t.TempDir()
	d := &Decoder{}
	_, err := d.DecodeToDir(dir, strings.NewReader("begin 644 -\n#86)C\n \nend\n"))
	require.ErrorIs(t, err, codecerr.ErrUnsafePath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDecodeToDirStdout(t *testing.T) {
	var stdout bytes.Buffer
	d := &Decoder{Stdout: &stdout}
	path, err := d.DecodeToDir(t.TempDir(), strings.NewReader("begin 644 -\n#86)C\n \nend\n"))
	require.NoError(t, err)
	require.Equal(t, "-", path)
	require.Equal(t, "abc", stdout.String())
}
