package codec

import (
	"log/slog"

	"github.com/birdayz/trydecode/pkg/binhex"
	"github.com/birdayz/trydecode/pkg/uu"
)

// BinHexOptions fill in the header of encoded BinHex files. Empty Type and
// Creator fall back to what binhex.NewFileInfo derives from the data.
type BinHexOptions struct {
	Name    string
	Type    string
	Creator string
}

// DefaultBinHexName names the data fork of encoded BinHex files.
const DefaultBinHexName = "data.bin"

// Uuencoding wraps data in a uuencoded file. Decoding returns the payload of
// the first file found; recovered lines are logged to logger.
func Uuencoding(opts uu.EncodeOptions, logger *slog.Logger) Codec {
	dec := &uu.Decoder{Logger: logger}
	return New("Uuencoding",
		func(b []byte) ([]byte, error) {
			return uu.EncodeBytes(b, opts)
		},
		dec.DecodeBytes,
	)
}

// BinHex wraps data in the data fork of a BinHex 4.0 file. Decoding verifies
// both forks and returns the data fork.
func BinHex(opts BinHexOptions) Codec {
	if opts.Name == "" {
		opts.Name = DefaultBinHexName
	}
	return New("BinHex",
		func(b []byte) ([]byte, error) {
			info := binhex.NewFileInfo(opts.Name, b)
			if opts.Type != "" {
				info.Type = opts.Type
			}
			if opts.Creator != "" {
				info.Creator = opts.Creator
			}
			return binhex.Encode(binhex.File{FileInfo: info, Data: b})
		},
		func(b []byte) ([]byte, error) {
			f, err := binhex.Decode(b)
			if err != nil {
				return nil, err
			}
			return f.Data, nil
		},
	)
}

// Options configure the container codecs of the default registry.
type Options struct {
	Logger *slog.Logger
	UU     uu.EncodeOptions
	BinHex BinHexOptions
}

// Default returns the standard registry, in reporting order.
func Default(opts Options) *Registry {
	r, err := NewRegistry(
		Base64(),
		Base32(),
		Base16(),
		Ascii85(),
		Base85(),
		Uuencoding(opts.UU, opts.Logger),
		BinHex(opts.BinHex),
		ROT13(),
		QuotedPrintable(),
		PercentEncoding(),
		HTML(),
	)
	if err != nil {
		panic(err)
	}
	return r
}
