package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/datamatic/internal/config"
	"github.com/KaramelBytes/datamatic/internal/logging"
	"github.com/KaramelBytes/datamatic/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger  = zap.NewNop()
	metrics = telemetry.NoopInstruments()
)

var rootCmd = &cobra.Command{
	Use:   "datamatic",
	Short: "Datamatic CLI: profile tabular datasets",
	Long: `Datamatic reads CSV, TSV, JSON and XLSX datasets, infers the type of every column and
reports summary statistics, missing values, outliers and pairwise correlations.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datamatic/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

// setup loads configuration and builds the logger before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so `config set` can repair a bad file
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if debug {
		level = "debug"
	}
	l, err := logging.New(level)
	if err != nil {
		return err
	}
	logger = l
	metrics = telemetry.NewInstruments()
	logger.Debug("config loaded",
		zap.String("config", cfgFile),
		zap.Int("sample_size", cfg.SampleSize),
		zap.Int("batch_workers", cfg.BatchWorkers),
		zap.String("sessions_dir", cfg.SessionsDir))
	return nil
}
