package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	"github.com/birdayz/trydecode/pkg/blind"
	"github.com/birdayz/trydecode/pkg/codec"
	"github.com/birdayz/trydecode/pkg/config"
	"github.com/birdayz/trydecode/pkg/uu"
)

// App holds all shared mutable state for the CLI. It is created once per
// invocation and threaded into every command package.
type App struct {
	// I/O
	OutWriter    io.Writer
	ErrWriter    io.Writer
	InReader     io.Reader
	ColorableOut io.Writer

	// Config state
	Cfg     config.Config
	CfgFile string

	// Logging
	Verbose bool
	Debug   bool
	Logger  *slog.Logger

	// Codecs. Registry has the disabled codecs removed; AllCodecs does not.
	AllCodecs *codec.Registry
	Registry  *codec.Registry
	Engine    *blind.Engine

	// Display
	NoHeaderFlag bool
	NoColor      bool
	JSONFmt      *prettyjson.Formatter

	// Root command reference (for completion generation)
	Root *cobra.Command
}

// New creates an App with sane defaults.
func New() *App {
	return &App{
		OutWriter:    os.Stdout,
		ErrWriter:    os.Stderr,
		InReader:     os.Stdin,
		ColorableOut: colorable.NewColorableStdout(),
		JSONFmt:      prettyjson.NewFormatter(),
	}
}

// LogLevel maps the verbosity flags to a slog level.
func (a *App) LogLevel() slog.Level {
	switch {
	case a.Debug:
		return slog.LevelDebug
	case a.Verbose:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// InitConfig reads the config file, sets up logging and builds the codec
// registry and decode engine. Called by PersistentPreRunE on the root
// command.
func (a *App) InitConfig() error {
	var err error
	a.Cfg, err = config.ReadConfig(a.CfgFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.Logger = slog.New(slog.NewTextHandler(a.ErrWriter, &slog.HandlerOptions{Level: a.LogLevel()}))
	a.JSONFmt.DisabledColor = a.NoColor || !a.Cfg.ColorEnabled()

	opts, err := a.CodecOptions()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.AllCodecs = codec.Default(opts)
	a.Registry, err = a.AllCodecs.Without(a.Cfg.DisabledCodecs...)
	if err != nil {
		return fmt.Errorf("invalid config: disabled-codecs: %w", err)
	}
	a.Engine = blind.NewEngine(a.Registry, a.Logger)
	a.Logger.Debug("config loaded", "path", a.Cfg.Path(), "codecs", a.Registry.Len())
	return nil
}

// CodecOptions builds the container codec settings from the config.
func (a *App) CodecOptions() (codec.Options, error) {
	mode, err := a.Cfg.UU.FileMode()
	if err != nil {
		return codec.Options{}, err
	}
	return codec.Options{
		Logger: a.Logger,
		UU: uu.EncodeOptions{
			Name:     a.Cfg.UU.Name,
			Mode:     mode,
			Backtick: a.Cfg.UU.Backtick,
		},
		BinHex: codec.BinHexOptions{
			Name:    a.Cfg.BinHex.Name,
			Type:    a.Cfg.BinHex.Type,
			Creator: a.Cfg.BinHex.Creator,
		},
	}, nil
}

// ReadInput reads the whole input named by args: stdin when args is empty or
// "-", the named file otherwise.
func (a *App) ReadInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(a.InReader)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}

// Restrict narrows Engine to the named codecs.
func (a *App) Restrict(names []string) error {
	if len(names) == 0 {
		return nil
	}
	r, err := a.Registry.Only(names...)
	if err != nil {
		return err
	}
	a.Engine = blind.NewEngine(r, a.Logger)
	return nil
}

// AddNoHeadersFlag installs --no-headers on cmd.
func (a *App) AddNoHeadersFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&a.NoHeaderFlag, "no-headers", false, "Hide table headers")
}

// ValidCodecArgs provides shell completion for codec names.
func (a *App) ValidCodecArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return codec.Default(codec.Options{}).Names(), cobra.ShellCompDirectiveNoFileComp
}

const (
	TabwriterMinWidth       = 6
	TabwriterMinWidthNested = 2
	TabwriterWidth          = 4
	TabwriterPadding        = 3
	TabwriterPadChar        = ' '
	TabwriterFlags          = 0
)

// NewTabWriter creates a standard tabwriter for CLI output.
func NewTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, TabwriterMinWidth, TabwriterWidth, TabwriterPadding, TabwriterPadChar, TabwriterFlags)
}
