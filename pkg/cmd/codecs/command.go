package codecs

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/birdayz/trydecode/pkg/app"
)

// NewCommand returns the "trydecode codecs" command.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "codecs",
		Aliases: []string{"ls"},
		Short:   "List codecs in the order they are tried",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := app.NewTabWriter(a.OutWriter)
			if !a.NoHeaderFlag {
				fmt.Fprintf(w, "NAME\tENABLED\t\n")
			}
			for _, name := range a.AllCodecs.Names() {
				enabled := "yes"
				if a.Cfg.IsDisabled(name) {
					enabled = "no"
				}
				fmt.Fprintf(w, "%v\t%v\t\n", name, enabled)
			}
			return w.Flush()
		},
	}
	a.AddNoHeadersFlag(cmd)
	return cmd
}
