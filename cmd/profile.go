package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/KaramelBytes/datamatic/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	profInput   inputFlags
	profProfile profileFlags
	profFormat  string
	profOutput  string
	profSave    bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile a CSV/TSV/JSON/XLSX dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := outputFormat(profFormat)
		if err != nil {
			return err
		}
		ds, err := profInput.load(path)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		prof, err := profProfile.profiler().Build(ctx, ds)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), profOutput, func(w io.Writer) error {
			return renderProfile(w, prof, format)
		}); err != nil {
			return err
		}
		if profOutput != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", profOutput)
		}
		if profSave {
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			s := session.New(abs, prof)
			s.Sheet = profInput.sheetName
			if err := sessionStore().Save(s); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			logger.Debug("session saved", zap.String("id", s.ID), zap.String("source", abs))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved session %s\n", s.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profInput.register(profileCmd)
	profProfile.register(profileCmd)
	profileCmd.Flags().StringVarP(&profFormat, "format", "f", "", "output format: markdown|json|yaml (default from config)")
	profileCmd.Flags().StringVarP(&profOutput, "output", "o", "", "optional path to write the profile")
	profileCmd.Flags().BoolVar(&profSave, "save", false, "store the profile as a session")
}
