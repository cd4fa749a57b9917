package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v3"

	"github.com/birdayz/trydecode/pkg/app"
)

// NewCommand returns the "trydecode config" command with subcommands.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Handle trydecode configuration",
	}

	cmd.AddCommand(
		newViewCommand(a),
		newSetOutputCommand(a),
		newSelectOutputCommand(a),
		newDisableCommand(a),
		newEnableCommand(a),
	)

	return cmd
}

func newViewCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Display the configuration and where it is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := yaml.Marshal(&a.Cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprintf(a.OutWriter, "# %s\n%s", a.Cfg.Path(), b)
			return nil
		},
	}
}

func newSetOutputCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:       "set-output FORMAT",
		Short:     "Set the default output format of decode and self-test",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: app.OutputFormats(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Cfg.SetOutput(args[0]); err != nil {
				return fmt.Errorf("unable to write config: %w", err)
			}
			fmt.Fprintf(a.OutWriter, "Default output set to \"%v\".\n", args[0])
			return nil
		},
	}
}

func newSelectOutputCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "select-output",
		Short: "Interactively select the default output format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := app.OutputFormats()
			pos := max(slices.Index(formats, a.Cfg.Output), 0)

			p := promptui.Select{
				Label:     "Select output format",
				Items:     formats,
				Size:      len(formats),
				CursorPos: pos,
				Searcher: func(input string, index int) bool {
					return strings.Contains(formats[index], strings.ToLower(strings.TrimSpace(input)))
				},
			}

			_, selected, err := p.Run()
			if err != nil {
				// Ctrl-C and friends.
				return nil
			}
			if err := a.Cfg.SetOutput(selected); err != nil {
				return fmt.Errorf("unable to write config: %w", err)
			}
			fmt.Fprintf(a.OutWriter, "Default output set to \"%v\".\n", selected)
			return nil
		},
	}
}

func newDisableCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "disable CODEC",
		Short:             "Stop trying a codec during decode",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.ValidCodecArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := a.AllCodecs.Lookup(args[0])
			if !ok {
				return fmt.Errorf("codec with name %v not found", args[0])
			}
			if err := a.Cfg.Disable(c.Name()); err != nil {
				return fmt.Errorf("unable to write config: %w", err)
			}
			fmt.Fprintf(a.OutWriter, "Disabled codec \"%v\".\n", c.Name())
			return nil
		},
	}
}

func newEnableCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "enable CODEC",
		Short:             "Try a disabled codec again",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.ValidCodecArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := a.AllCodecs.Lookup(args[0])
			if !ok {
				return fmt.Errorf("codec with name %v not found", args[0])
			}
			if err := a.Cfg.Enable(c.Name()); err != nil {
				return err
			}
			fmt.Fprintf(a.OutWriter, "Enabled codec \"%v\".\n", c.Name())
			return nil
		},
	}
}
