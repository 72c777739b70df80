package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/datamatic/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	chartInput      inputFlags
	chartColumns    string
	chartMode       string
	chartKind       string
	chartSampleSize int
	chartFormat     string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Aggregate plot-ready series for one or two columns",
	Long: `Reshapes a dataset into the data behind a chart. The distribution mode takes one column
and yields (row, value) points for numeric columns or (label, count) pairs otherwise; the
relationship mode takes two numeric columns and yields (x, y) points.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(chartFormat))
		switch format {
		case "json", "yaml", "markdown":
		case "md":
			format = "markdown"
		default:
			return fmt.Errorf("unsupported --format: %s (use json|yaml|markdown)", chartFormat)
		}
		kind, err := analysis.ParseChartKind(chartKind)
		if err != nil {
			return err
		}
		mode := analysis.ChartMode(strings.ToLower(strings.TrimSpace(chartMode)))
		ds, err := chartInput.load(args[0])
		if err != nil {
			return err
		}
		size := cfg.SampleSize
		if chartSampleSize > 0 {
			size = chartSampleSize
		}
		series, err := analysis.Aggregate(ds, analysis.Infer(ds, size), analysis.ChartRequest{
			Columns: splitColumns(chartColumns),
			Mode:    mode,
			Kind:    kind,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if format != "markdown" {
			return encode(out, series, format)
		}
		return writeSeriesMarkdown(out, series)
	},
}

func writeSeriesMarkdown(w io.Writer, s analysis.Series) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[CHART] %s %s of %s\n", s.Kind, s.Mode, strings.Join(s.Columns, " vs ")))
	switch {
	case len(s.Categories) > 0:
		for _, c := range s.Categories {
			b.WriteString(fmt.Sprintf("- %s: %d\n", c.Value, c.Count))
		}
	case len(s.Points) > 0:
		for _, p := range s.Points {
			b.WriteString(fmt.Sprintf("- %g, %g\n", p.X, p.Y))
		}
	default:
		b.WriteString("(no data)\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartInput.register(chartCmd)
	chartCmd.Flags().StringVar(&chartColumns, "columns", "", "comma-separated columns: one for distribution, two for relationship")
	chartCmd.Flags().StringVar(&chartMode, "mode", string(analysis.ModeDistribution), "chart mode: distribution|relationship")
	chartCmd.Flags().StringVar(&chartKind, "kind", "", "chart kind: scatter|bar|line|area|pie (default by column type)")
	chartCmd.Flags().IntVar(&chartSampleSize, "sample-size", 0, "rows inspected for type inference (default from config)")
	chartCmd.Flags().StringVarP(&chartFormat, "format", "f", "json", "output format: json|yaml|markdown")
}
