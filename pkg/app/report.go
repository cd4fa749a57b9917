package app

import (
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/birdayz/trydecode/pkg/blind"
)

// DecodedView is one decoded codec in a rendered report.
type DecodedView struct {
	Codec string `json:"codec" msgpack:"codec"`
	Text  string `json:"text" msgpack:"text"`
}

// FailedView is one failed codec in a rendered report.
type FailedView struct {
	Codec  string `json:"codec" msgpack:"codec"`
	Reason string `json:"reason" msgpack:"reason"`
}

// ReportView is the serializable form of a blind.Report, used by the json,
// msgpack and template outputs.
type ReportView struct {
	EmptyInput bool          `json:"empty_input" msgpack:"empty_input"`
	Decoded    []DecodedView `json:"decoded" msgpack:"decoded"`
	Failed     []FailedView  `json:"failed" msgpack:"failed"`
	Unchanged  []string      `json:"unchanged" msgpack:"unchanged"`
}

// NewReportView flattens r.
func NewReportView(r *blind.Report) ReportView {
	v := ReportView{
		EmptyInput: r.EmptyInput,
		Decoded:    []DecodedView{},
		Failed:     []FailedView{},
		Unchanged:  []string{},
	}
	for _, o := range r.Outcomes {
		switch o.Status {
		case blind.Decoded:
			v.Decoded = append(v.Decoded, DecodedView{Codec: o.Codec, Text: o.Text()})
		case blind.Unchanged:
			v.Unchanged = append(v.Unchanged, o.Codec)
		default:
			v.Failed = append(v.Failed, FailedView{Codec: o.Codec, Reason: o.Reason()})
		}
	}
	return v
}

// RoundTripView is one codec of a rendered self-test.
type RoundTripView struct {
	Codec   string     `json:"codec" msgpack:"codec"`
	Encoded string     `json:"encoded" msgpack:"encoded"`
	OK      bool       `json:"ok" msgpack:"ok"`
	Report  ReportView `json:"report" msgpack:"report"`
}

// SelfTestView is the serializable form of a self-test run.
type SelfTestView struct {
	Corpus  string          `json:"corpus" msgpack:"corpus"`
	Results []RoundTripView `json:"results" msgpack:"results"`
}

// NewSelfTestView flattens a self-test run over corpus.
func NewSelfTestView(corpus []byte, results []blind.RoundTrip) SelfTestView {
	v := SelfTestView{Corpus: string(corpus), Results: make([]RoundTripView, 0, len(results))}
	for _, rt := range results {
		v.Results = append(v.Results, RoundTripView{
			Codec:   rt.Codec,
			Encoded: string(rt.Encoded),
			OK:      rt.OK,
			Report:  NewReportView(rt.Report),
		})
	}
	return v
}

// PrintReport writes r in the given format. tmpl is only used by the
// template format.
func (a *App) PrintReport(r *blind.Report, format OutputFormat, tmpl string) error {
	if format == OutputFormatDefault || format == "" {
		return r.WriteText(a.OutWriter)
	}
	return a.render(NewReportView(r), format, tmpl)
}

// PrintSelfTest writes a self-test run in the given format.
func (a *App) PrintSelfTest(corpus []byte, results []blind.RoundTrip, format OutputFormat, tmpl string) error {
	if format != OutputFormatDefault && format != "" {
		return a.render(NewSelfTestView(corpus, results), format, tmpl)
	}
	fmt.Fprintf(a.OutWriter, "Encoding and decoding this string: %q\n", corpus)
	for _, rt := range results {
		fmt.Fprintf(a.OutWriter, "======== %s ========\n", rt.Codec)
		fmt.Fprintf(a.OutWriter, "%q\n", rt.Encoded)
		if err := rt.Report.WriteText(a.OutWriter); err != nil {
			return err
		}
		if !rt.OK {
			fmt.Fprintf(a.OutWriter, "round trip FAILED for %s\n", rt.Codec)
		}
	}
	return nil
}

func (a *App) render(v any, format OutputFormat, tmpl string) error {
	switch format {
	case OutputFormatJSON:
		b, err := a.JSONFmt.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintf(a.ColorableOut, "%s\n", b)
		return err
	case OutputFormatMsgPack:
		b, err := msgpack.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode msgpack: %w", err)
		}
		_, err = a.OutWriter.Write(b)
		return err
	case OutputFormatTemplate:
		return executeTemplate(a.OutWriter, tmpl, v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func executeTemplate(w io.Writer, tmpl string, v any) error {
	if tmpl == "" {
		return fmt.Errorf("--template is required with --output template")
	}
	tpl, err := template.New("trydecode").Funcs(sprig.HermeticTxtFuncMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse go template: %v", err)
	}
	if err := tpl.Execute(w, v); err != nil {
		return fmt.Errorf("failed to execute go template: %v", err)
	}
	return nil
}
