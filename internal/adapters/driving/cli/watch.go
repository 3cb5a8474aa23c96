package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsift/internal/connectors/filesystem"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/logger"
)

var (
	watchDebounce  time.Duration
	watchHidden    bool
	watchExclude   []string
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Keep a folder ingested as files change",
	Long: `Runs an initial scan, then watches the folder and its subfolders. Changes
are collected for a quiet period and applied together: changed files trigger
an incremental rescan and deleted files are removed from the corpus.

Stops on ctrl+c.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce, "quiet period before applying changes")
	watchCmd.Flags().BoolVar(&watchHidden, "hidden", false, "include hidden files and directories")
	watchCmd.Flags().StringSliceVar(&watchExclude, "exclude", nil, "glob patterns of names to skip")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip the initial scan")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if scanOrchestrator == nil {
		return errors.New("scan orchestrator not configured")
	}

	root, err := filesystem.ResolveRoot(args[0])
	if err != nil {
		return err
	}
	opts := domain.ScanOptions{IncludeHidden: watchHidden, Exclude: watchExclude}
	ctx := cmd.Context()

	if !watchNoInitial {
		cmd.Printf("Scanning %s\n", root)
		session, err := scanOrchestrator.Scan(ctx, root, opts, nil)
		if err != nil {
			return fmt.Errorf("initial scan failed: %w", err)
		}
		printScanSummary(cmd, session)
	}

	w, err := filesystem.NewWatcher(root, filesystem.WalkOptions{
		IncludeHidden: watchHidden,
		Exclude:       watchExclude,
		Accept:        acceptFile,
	}, watchDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	cmd.Printf("\nWatching %s (ctrl+c to stop)\n", root)
	return w.Run(ctx, func(ctx context.Context, b filesystem.Batch) {
		applyBatch(ctx, cmd, root, opts, b)
	})
}

// applyBatch prunes removed paths and rescans when anything changed.
func applyBatch(ctx context.Context, cmd *cobra.Command, root string, opts domain.ScanOptions, b filesystem.Batch) {
	if len(b.Removed) > 0 && maintenanceService != nil {
		n, err := maintenanceService.PrunePaths(ctx, b.Removed)
		if err != nil {
			logger.Warn("Failed to remove deleted files: %v", err)
		} else if n > 0 {
			cmd.Printf("%s  removed %d documents\n", time.Now().Format(time.TimeOnly), n)
		}
	}

	if len(b.Changed) == 0 {
		return
	}
	session, err := scanOrchestrator.Scan(ctx, root, opts, nil)
	switch {
	case errors.Is(err, domain.ErrScanInProgress):
		logger.Warn("Rescan skipped: %v", err)
	case err != nil:
		logger.Warn("Rescan failed: %v", err)
	default:
		cmd.Printf("%s  %d changed: %d new, %d updated, %d errors\n",
			time.Now().Format(time.TimeOnly), len(b.Changed), session.NewFiles, session.UpdatedFiles, len(session.Errors))
	}
}
