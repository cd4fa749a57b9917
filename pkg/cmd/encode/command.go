package encode

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/birdayz/trydecode/pkg/app"
)

// NewCommand returns the "trydecode encode" command.
func NewCommand(a *app.App) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:               "encode CODEC [FILE]",
		Short:             "Encode a file or stdin with one codec",
		Example:           "  printf hello | trydecode encode Uuencoding",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: a.ValidCodecArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := a.AllCodecs.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown codec %q", args[0])
			}
			input, err := a.ReadInput(args[1:])
			if err != nil {
				return err
			}
			encoded, err := c.Encode(input)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			if verify {
				decoded, err := c.Decode(encoded)
				if err != nil {
					return fmt.Errorf("%s: encoded output does not decode: %w", c.Name(), err)
				}
				if !bytes.Equal(decoded, input) {
					return fmt.Errorf("%s: round trip changed the input", c.Name())
				}
				a.Logger.Info("round trip verified", "codec", c.Name(), "bytes", len(input))
			}
			_, err = a.OutWriter.Write(encoded)
			return err
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Decode the result again and fail if it differs from the input")
	return cmd
}
