package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/datamatic/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	corrInput      inputFlags
	corrSession    string
	corrColumns    string
	corrSampleSize int
	corrTop        int
	corrFormat     string
)

// correlationReport is the encoded form of the correlate command.
type correlationReport struct {
	Dataset string                      `json:"dataset" yaml:"dataset"`
	Matrix  analysis.CorrelationMatrix  `json:"matrix" yaml:"matrix"`
	Pairs   []analysis.CorrelationEntry `json:"top_pairs" yaml:"top_pairs"`
}

var correlateCmd = &cobra.Command{
	Use:   "correlate [file]",
	Short: "Show the Pearson correlation matrix of the numeric columns",
	Long: `Computes Pearson's r for every pair of numeric columns over the rows where both values
are present. Reads a dataset file, or the stored profile of a session with --session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(corrFormat)
		if err != nil {
			return err
		}
		var rep correlationReport
		switch {
		case corrSession != "" && len(args) == 0:
			s, err := sessionStore().Load(corrSession)
			if err != nil {
				return err
			}
			rep.Dataset = s.Profile.Name
			rep.Matrix = s.Profile.Correlation
		case corrSession == "" && len(args) == 1:
			ds, err := corrInput.load(args[0])
			if err != nil {
				return err
			}
			size := cfg.SampleSize
			if corrSampleSize > 0 {
				size = corrSampleSize
			}
			types := analysis.Infer(ds, size)
			var numeric []string
			for _, c := range ds.Columns {
				if types[c].IsNumeric() {
					numeric = append(numeric, c)
				}
			}
			rep.Dataset = ds.Name
			rep.Matrix = analysis.Correlate(ds, numeric)
		default:
			return fmt.Errorf("provide either a dataset file or --session")
		}
		if cols := splitColumns(corrColumns); len(cols) > 0 {
			sub, err := subMatrix(rep.Matrix, cols)
			if err != nil {
				return err
			}
			rep.Matrix = sub
		}
		rep.Pairs = analysis.TopPairs(rep.Matrix, corrTop)

		out := cmd.OutOrStdout()
		if format != "markdown" {
			return encode(out, rep, format)
		}
		return writeCorrelationMarkdown(out, rep)
	},
}

// subMatrix restricts m to cols, in the given order.
func subMatrix(m analysis.CorrelationMatrix, cols []string) (analysis.CorrelationMatrix, error) {
	out := analysis.CorrelationMatrix{Columns: cols, Values: make([][]float64, len(cols))}
	for i, a := range cols {
		out.Values[i] = make([]float64, len(cols))
		for j, b := range cols {
			r, ok := m.Get(a, b)
			if !ok {
				missing := a
				if _, ok := m.Get(a, a); ok {
					missing = b
				}
				return analysis.CorrelationMatrix{}, fmt.Errorf("%w: %q is not a numeric column (numeric: %s)",
					analysis.ErrNotNumeric, missing, strings.Join(m.Columns, ", "))
			}
			out.Values[i][j] = r
		}
	}
	return out, nil
}

func writeCorrelationMarkdown(w io.Writer, rep correlationReport) error {
	var b strings.Builder
	b.WriteString("[CORRELATION MATRIX]\n")
	if rep.Dataset != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", rep.Dataset))
	}
	if rep.Matrix.Len() == 0 {
		b.WriteString("\n(no numeric columns)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("\n|   |")
	for _, c := range rep.Matrix.Columns {
		b.WriteString(" " + c + " |")
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", rep.Matrix.Len()))
	b.WriteString("\n")
	for i, c := range rep.Matrix.Columns {
		b.WriteString("| " + c + " |")
		for j := range rep.Matrix.Columns {
			b.WriteString(fmt.Sprintf(" %.3f |", rep.Matrix.Values[i][j]))
		}
		b.WriteString("\n")
	}
	if len(rep.Pairs) > 0 {
		b.WriteString("\n[TOP PAIRS]\n")
		for _, e := range rep.Pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", e.ColumnA, e.ColumnB, e.Coefficient))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	corrInput.register(correlateCmd)
	correlateCmd.Flags().StringVarP(&corrSession, "session", "s", "", "read the matrix from a saved session instead of a file")
	correlateCmd.Flags().StringVar(&corrColumns, "columns", "", "comma-separated numeric columns to include")
	correlateCmd.Flags().IntVar(&corrSampleSize, "sample-size", 0, "rows inspected for type inference (default from config)")
	correlateCmd.Flags().IntVar(&corrTop, "top", 10, "number of strongest pairs to list (0 = all)")
	correlateCmd.Flags().StringVarP(&corrFormat, "format", "f", "", "output format: markdown|json|yaml (default from config)")
}
