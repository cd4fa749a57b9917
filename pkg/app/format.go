package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// OutputFormat controls how decode reports are printed.
type OutputFormat string

const (
	OutputFormatDefault  OutputFormat = "default"
	OutputFormatJSON     OutputFormat = "json"
	OutputFormatMsgPack  OutputFormat = "msgpack"
	OutputFormatTemplate OutputFormat = "template"
)

var outputFormats = []string{"default", "json", "msgpack", "template"}

var _ pflag.Value = (*OutputFormat)(nil)

func (e *OutputFormat) String() string {
	return string(*e)
}

func (e *OutputFormat) Set(v string) error {
	switch v {
	case "default", "json", "msgpack", "template":
		*e = OutputFormat(v)
		return nil
	default:
		return fmt.Errorf("must be one of: default, json, msgpack, template")
	}
}

func (e *OutputFormat) Type() string {
	return "OutputFormat"
}

// CompleteOutputFormat provides shell completion for --output.
func CompleteOutputFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return outputFormats, cobra.ShellCompDirectiveNoFileComp
}

// OutputFormats lists the accepted --output values.
func OutputFormats() []string {
	return append([]string(nil), outputFormats...)
}

// Output resolves the format to use: the flag when it was given, the
// config otherwise, default as a last resort.
func (a *App) Output(flag OutputFormat) (OutputFormat, error) {
	if flag != "" {
		return flag, nil
	}
	if a.Cfg.Output == "" {
		return OutputFormatDefault, nil
	}
	var f OutputFormat
	if err := f.Set(a.Cfg.Output); err != nil {
		return "", fmt.Errorf("invalid output %q in config: %w", a.Cfg.Output, err)
	}
	return f, nil
}
