package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/KaramelBytes/datamatic/internal/analysis"
	"github.com/KaramelBytes/datamatic/internal/parser"
	"github.com/KaramelBytes/datamatic/internal/session"
	"github.com/KaramelBytes/datamatic/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	pbInput     inputFlags
	pbProfile   profileFlags
	pbFormat    string
	pbOutputDir string
	pbWorkers   int
	pbSave      bool
	pbQuiet     bool
)

type batchResult struct {
	path string
	prof *analysis.DatasetProfile
	err  error
}

var profileBatchCmd = &cobra.Command{
	Use:   "profile-batch <files|dirs|globs...>",
	Short: "Profile several datasets concurrently with progress output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args, parser.Supported)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		format, err := outputFormat(pbFormat)
		if err != nil {
			return err
		}
		workers := cfg.BatchWorkers
		if pbWorkers > 0 {
			workers = pbWorkers
		}
		if pbOutputDir != "" {
			if err := utils.EnsureDir(pbOutputDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		out := cmd.OutOrStdout()
		results := runBatch(ctx, files, workers, out)

		var errs []error
		for _, r := range results {
			if r.err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.path, r.err))
				continue
			}
			if err := emitBatchResult(out, r, format); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.path, err))
			}
		}
		if len(errs) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %d of %d files failed\n", len(errs), len(files))
		}
		return errors.Join(errs...)
	},
}

// runBatch profiles files with at most workers in flight. Results keep input order.
func runBatch(ctx context.Context, files []string, workers int, progress io.Writer) []batchResult {
	sem := semaphore.NewWeighted(int64(workers))
	results := make([]batchResult, len(files))
	total := len(files)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for i, path := range files {
		results[i].path = path
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].err = err
			continue
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)
			prof, err := profileOne(ctx, path)
			results[i].prof, results[i].err = prof, err

			mu.Lock()
			defer mu.Unlock()
			done++
			if pbQuiet {
				return
			}
			if err != nil {
				fmt.Fprintf(progress, "[%d/%d] ✗ %s: %v\n", done, total, filepath.Base(path), err)
				return
			}
			fmt.Fprintf(progress, "[%d/%d] ✓ %s (%d rows, %d columns)\n",
				done, total, filepath.Base(path), prof.RowCount, len(prof.Columns))
		}(i, path)
	}
	wg.Wait()
	return results
}

func profileOne(ctx context.Context, path string) (*analysis.DatasetProfile, error) {
	ds, err := pbInput.load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded", zap.String("path", path), zap.Int("rows", ds.Len()))
	return pbProfile.profiler().Build(ctx, ds)
}

func emitBatchResult(out io.Writer, r batchResult, format string) error {
	if pbSave {
		abs, err := filepath.Abs(r.path)
		if err != nil {
			abs = r.path
		}
		s := session.New(abs, r.prof)
		s.Sheet = pbInput.sheetName
		if err := sessionStore().Save(s); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if !pbQuiet {
			fmt.Fprintf(out, "✓ Saved session %s for %s\n", s.ID, filepath.Base(r.path))
		}
	}
	if pbOutputDir != "" {
		dest := filepath.Join(pbOutputDir, reportName(r.path, format))
		if _, err := os.Stat(dest); err == nil {
			dest = uniquePath(dest)
			if !pbQuiet {
				fmt.Fprintf(out, "⚠ Detected existing report, writing to %s to avoid overwrite.\n", filepath.Base(dest))
			}
		}
		if err := writeOutput(out, dest, func(w io.Writer) error { return renderProfile(w, r.prof, format) }); err != nil {
			return err
		}
		if !pbQuiet {
			fmt.Fprintf(out, "✓ Wrote %s\n", dest)
		}
		return nil
	}
	if pbQuiet {
		return nil
	}
	return renderProfile(out, r.prof, format)
}

func reportName(path, format string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := map[string]string{"markdown": ".md", "json": ".json", "yaml": ".yaml"}[format]
	return stem + ".profile" + ext
}

// uniquePath appends __2, __3, ... before the extension until path is free.
func uniquePath(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s__%d%s", stem, idx, ext)
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(profileBatchCmd)
	pbInput.register(profileBatchCmd)
	pbProfile.register(profileBatchCmd)
	profileBatchCmd.Flags().StringVarP(&pbFormat, "format", "f", "", "output format: markdown|json|yaml (default from config)")
	profileBatchCmd.Flags().StringVar(&pbOutputDir, "output-dir", "", "write one report per file into this directory")
	profileBatchCmd.Flags().IntVarP(&pbWorkers, "workers", "w", 0, "files profiled concurrently (default from config)")
	profileBatchCmd.Flags().BoolVar(&pbSave, "save", false, "store each profile as a session")
	profileBatchCmd.Flags().BoolVar(&pbQuiet, "quiet", false, "suppress progress and non-essential output")
}
