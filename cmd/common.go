package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/datamatic/internal/analysis"
	"github.com/KaramelBytes/datamatic/internal/parser"
	"github.com/KaramelBytes/datamatic/internal/session"
	"github.com/KaramelBytes/datamatic/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// inputFlags holds the loader flags shared by every command reading a dataset.
type inputFlags struct {
	delimiter  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default by extension)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", -1, "maximum rows to read (0 = unlimited, default from config)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f *inputFlags) options() (parser.Options, error) {
	opt := parser.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex, MaxRows: f.maxRows}
	if opt.MaxRows < 0 {
		opt.MaxRows = cfg.MaxRows
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

func (f *inputFlags) load(path string) (*analysis.Dataset, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	ds, err := parser.LoadFile(path, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// profileFlags overrides profiler settings from config.
type profileFlags struct {
	sampleSize   int
	sampleValues int
	outlierThr   float64
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.sampleSize, "sample-size", 0, "rows inspected for type inference (default from config)")
	cmd.Flags().IntVar(&f.sampleValues, "sample-values", -1, "sample values kept per column (default from config)")
	cmd.Flags().Float64Var(&f.outlierThr, "outlier-threshold", -1, "robust |z| threshold for outliers, 0 disables (default from config)")
}

func (f *profileFlags) profiler() *analysis.Profiler {
	size, values, thr := cfg.SampleSize, cfg.MaxSampleValues, cfg.OutlierThreshold
	if f.sampleSize > 0 {
		size = f.sampleSize
	}
	if f.sampleValues >= 0 {
		values = f.sampleValues
	}
	if f.outlierThr >= 0 {
		thr = f.outlierThr
	}
	return analysis.NewProfiler(
		analysis.WithSampleSize(size),
		analysis.WithSampleValues(values),
		analysis.WithOutlierThreshold(thr),
		analysis.WithLogger(logger),
		analysis.WithInstruments(metrics),
	)
}

// outputFormat resolves --format against the configured default.
func outputFormat(flag string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(flag))
	if f == "" {
		f = strings.ToLower(cfg.OutputFormat)
	}
	switch f {
	case "md":
		return "markdown", nil
	case "markdown", "json", "yaml":
		return f, nil
	default:
		return "", fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", flag)
	}
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %s cannot encode %T", format, v)
	}
}

// renderProfile writes prof in the requested format.
func renderProfile(w io.Writer, prof *analysis.DatasetProfile, format string) error {
	if format == "markdown" {
		_, err := fmt.Fprintln(w, prof.Markdown())
		return err
	}
	return encode(w, prof, format)
}

// writeOutput sends rendered output to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(w)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func sessionStore() *session.Store { return session.NewStore(cfg.SessionsDir) }
