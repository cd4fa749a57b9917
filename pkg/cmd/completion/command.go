package completion

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/birdayz/trydecode/pkg/app"
)

type generator func(root *cobra.Command, w io.Writer) error

var generators = map[string]generator{
	"bash": func(root *cobra.Command, w io.Writer) error {
		return root.GenBashCompletionV2(w, true)
	},
	"zsh": func(root *cobra.Command, w io.Writer) error {
		return root.GenZshCompletion(w)
	},
	"fish": func(root *cobra.Command, w io.Writer) error {
		return root.GenFishCompletion(w, true)
	},
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

func shells() []string {
	out := make([]string, 0, len(generators))
	for s := range generators {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// NewCommand returns the "trydecode completion" command. root is the tree
// the scripts are generated for.
func NewCommand(root *cobra.Command, a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "completion SHELL",
		Short: "Print a shell completion script",
		Long: `Print a shell completion script for bash, zsh, fish or powershell.

Current shell only:
  bash:  source <(trydecode completion bash)
  fish:  trydecode completion fish | source

Every new shell:
  bash:  trydecode completion bash > /etc/bash_completion.d/trydecode
  zsh:   trydecode completion zsh > "${fpath[1]}/_trydecode"
  fish:  trydecode completion fish > ~/.config/fish/completions/trydecode.fish
`,
		DisableFlagsInUseLine: true,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:             shells(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := generators[args[0]](root, a.OutWriter); err != nil {
				return fmt.Errorf("generate %s completion: %w", args[0], err)
			}
			return nil
		},
	}
}
