package selftest

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/birdayz/trydecode/pkg/app"
	"github.com/birdayz/trydecode/pkg/blind"
)

// NewCommand returns the "trydecode self-test" command.
func NewCommand(a *app.App) *cobra.Command {
	var (
		outputFlag app.OutputFormat
		tmplFlag   string
	)

	cmd := &cobra.Command{
		Use:   "self-test",
		Short: "Encode a fixed string with every codec and decode it blindly",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.Logger.Warn("running self-test, not processing input", "args", args)
			}
			format, err := a.Output(outputFlag)
			if err != nil {
				return err
			}

			corpus := []byte(blind.PrintableASCII)
			results, err := a.Engine.SelfTest(corpus)
			if err != nil {
				return err
			}
			if err := a.PrintSelfTest(corpus, results, format, tmplFlag); err != nil {
				return err
			}

			var failed []string
			for _, rt := range results {
				if !rt.OK {
					failed = append(failed, rt.Codec)
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("round trip failed for: %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().VarP(&outputFlag, "output", "o", "Output format. One of: default|json|msgpack|template")
	_ = cmd.RegisterFlagCompletionFunc("output", app.CompleteOutputFormat)
	cmd.Flags().StringVar(&tmplFlag, "template", "", "Go template used with --output template")

	return cmd
}
