package decode

import (
	"github.com/spf13/cobra"

	"github.com/birdayz/trydecode/pkg/app"
)

// NewCommand returns the "trydecode decode" command.
func NewCommand(a *app.App) *cobra.Command {
	var (
		outputFlag app.OutputFormat
		tmplFlag   string
		codecFlag  []string
	)

	cmd := &cobra.Command{
		Use:   "decode [FILE]",
		Short: "Try every enabled decoding on a file or stdin",
		Example: `  echo aGVsbG8= | trydecode decode
  trydecode decode message.txt --codec base64,html --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Restrict(codecFlag); err != nil {
				return err
			}
			format, err := a.Output(outputFlag)
			if err != nil {
				return err
			}
			input, err := a.ReadInput(args)
			if err != nil {
				return err
			}
			report, err := a.Engine.Decode(input)
			if err != nil {
				return err
			}
			return a.PrintReport(report, format, tmplFlag)
		},
	}

	cmd.Flags().VarP(&outputFlag, "output", "o", "Output format. One of: default|json|msgpack|template")
	_ = cmd.RegisterFlagCompletionFunc("output", app.CompleteOutputFormat)
	cmd.Flags().StringVar(&tmplFlag, "template", "", "Go template used with --output template")
	cmd.Flags().StringSliceVar(&codecFlag, "codec", nil, "Only try these codecs")
	_ = cmd.RegisterFlagCompletionFunc("codec", a.ValidCodecArgs)

	return cmd
}
