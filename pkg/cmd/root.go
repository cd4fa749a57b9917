package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/birdayz/trydecode/pkg/app"
	"github.com/birdayz/trydecode/pkg/cmd/codecs"
	"github.com/birdayz/trydecode/pkg/cmd/completion"
	tdconfig "github.com/birdayz/trydecode/pkg/cmd/config"
	"github.com/birdayz/trydecode/pkg/cmd/decode"
	"github.com/birdayz/trydecode/pkg/cmd/encode"
	"github.com/birdayz/trydecode/pkg/cmd/extract"
	"github.com/birdayz/trydecode/pkg/cmd/selftest"
)

// Execute is the single entry point for the CLI.
func Execute(version, commit string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand(app.New(), version, commit).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree around a.
func NewRootCommand(a *app.App, version, commit string) *cobra.Command {
	root := &cobra.Command{
		Use:          "trydecode",
		Short:        "Try binary-to-text decodings on a file or stdin",
		Version:      fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.OutWriter = cmd.OutOrStdout()
			a.ErrWriter = cmd.ErrOrStderr()
			a.InReader = cmd.InOrStdin()

			if a.OutWriter != os.Stdout {
				a.ColorableOut = a.OutWriter
			}

			return a.InitConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.CfgFile, "config", "", "config file (default is $HOME/.trydecode/config)")
	root.PersistentFlags().BoolVarP(&a.Verbose, "verbose", "v", false, "More verbose logging")
	root.PersistentFlags().BoolVarP(&a.Debug, "debug", "d", false, "Enable debugging logs")
	root.PersistentFlags().BoolVar(&a.NoColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		decode.NewCommand(a),
		encode.NewCommand(a),
		codecs.NewCommand(a),
		selftest.NewCommand(a),
		extract.NewCommand(a),
		tdconfig.NewCommand(a),
		completion.NewCommand(root, a),
	)

	a.Root = root
	return root
}
