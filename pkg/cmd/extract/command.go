package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/birdayz/trydecode/pkg/app"
	"github.com/birdayz/trydecode/pkg/binhex"
	"github.com/birdayz/trydecode/pkg/codecerr"
	"github.com/birdayz/trydecode/pkg/outpath"
	"github.com/birdayz/trydecode/pkg/uu"
)

const (
	formatAuto   = "auto"
	formatUU     = "uu"
	formatBinHex = "binhex"
)

var formats = []string{formatAuto, formatUU, formatBinHex}

type options struct {
	dir      string
	out      string
	format   string
	resource bool
}

// NewCommand returns the "trydecode extract" command.
func NewCommand(a *app.App) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "extract [FILE]",
		Short: "Write the file carried by a uuencoded or BinHex container",
		Long: `Write the file carried by a uuencoded or BinHex container.

The file is named by the container header and created inside --dir. Names that
are absolute or climb out of the directory are refused, and existing files are
never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := a.ReadInput(args)
			if err != nil {
				return err
			}
			format := opts.format
			if format == formatAuto {
				if format, err = detect(input); err != nil {
					return err
				}
				a.Logger.Debug("detected container format", "format", format)
			}

			var written []string
			switch format {
			case formatUU:
				written, err = extractUU(a, input, opts)
			case formatBinHex:
				written, err = extractBinHex(input, opts)
			default:
				return fmt.Errorf("unknown format %q, must be one of: auto, uu, binhex", opts.format)
			}
			if err != nil {
				return err
			}
			for _, p := range written {
				a.Logger.Info("wrote file", "path", p)
				if p != "-" {
					fmt.Fprintf(a.ErrWriter, "Wrote %s\n", p)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", ".", "Directory the extracted file is created in")
	cmd.Flags().StringVarP(&opts.out, "output-file", "o", "", "Write to this path instead of the name in the header")
	cmd.Flags().StringVar(&opts.format, "format", formatAuto, "Container format. One of: auto|uu|binhex")
	cmd.Flags().BoolVar(&opts.resource, "resource", false, "Also write a non-empty BinHex resource fork to NAME.rsrc")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return formats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// detect picks the container format from the first marker found in input.
func detect(input []byte) (string, error) {
	uuAt := lineStart(input, []byte("begin "))
	hqxAt := bytes.Index(input, []byte(binhex.Banner))
	if hqxAt < 0 {
		hqxAt = lineStart(input, []byte(":"))
	}
	switch {
	case uuAt >= 0 && (hqxAt < 0 || uuAt < hqxAt):
		return formatUU, nil
	case hqxAt >= 0:
		return formatBinHex, nil
	default:
		return "", fmt.Errorf("%w: no uuencoded or binhex data found", codecerr.ErrFormat)
	}
}

func lineStart(b, prefix []byte) int {
	for off := 0; off < len(b); {
		if bytes.HasPrefix(b[off:], prefix) {
			return off
		}
		i := bytes.IndexAny(b[off:], "\r\n")
		if i < 0 {
			break
		}
		off += i + 1
	}
	return -1
}

// create opens the target for a header name: -o when given, dir/name
// otherwise. Both go through the same path checks.
func create(opts options, name string, perm os.FileMode) (*os.File, error) {
	if opts.out != "" {
		return outpath.Create(filepath.Dir(opts.out), filepath.Base(opts.out), perm)
	}
	return outpath.Create(opts.dir, name, perm)
}

func extractUU(a *app.App, input []byte, opts options) ([]string, error) {
	dec := &uu.Decoder{Logger: a.Logger, Stdout: a.OutWriter}
	if opts.out == "" {
		path, err := dec.DecodeToDir(opts.dir, bytes.NewReader(input))
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var buf bytes.Buffer
	hdr, err := dec.Decode(&buf, bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	perm := os.FileMode(hdr.Mode) & os.ModePerm
	f, err := create(opts, hdr.Name, perm)
	if err != nil {
		return nil, err
	}
	if err := writeClose(f, buf.Bytes()); err != nil {
		return nil, err
	}
	if err := os.Chmod(f.Name(), perm); err != nil {
		return nil, err
	}
	return []string{f.Name()}, nil
}

func extractBinHex(input []byte, opts options) ([]string, error) {
	file, err := binhex.Decode(input)
	if err != nil {
		return nil, err
	}
	f, err := create(opts, file.Name, 0)
	if err != nil {
		return nil, err
	}
	if err := writeClose(f, file.Data); err != nil {
		return nil, err
	}
	written := []string{f.Name()}

	if opts.resource && len(file.Resource) > 0 {
		rf, err := outpath.Create(filepath.Dir(f.Name()), filepath.Base(f.Name())+".rsrc", 0)
		if err != nil {
			return written, err
		}
		if err := writeClose(rf, file.Resource); err != nil {
			return written, err
		}
		written = append(written, rf.Name())
	}
	return written, nil
}

// writeClose writes b to f and closes it. The file is removed if either
// fails.
func writeClose(f *os.File, b []byte) error {
	_, err := f.Write(b)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
	}
	return err
}
