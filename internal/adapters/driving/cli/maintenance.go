package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	reindexPrune bool
	reindexJSON  bool
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the full-text index and vector store",
	Long: `Pushes every stored document to the full-text index and re-embeds it in the
vector store. The relational store is the system of record, so this repairs
projections that drifted after an outage of the search service.

With --prune, documents whose files no longer exist are removed first.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().BoolVar(&reindexPrune, "prune", false, "remove documents whose files are gone")
	reindexCmd.Flags().BoolVar(&reindexJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	ctx := cmd.Context()
	pruned := 0
	if reindexPrune {
		report, err := maintenanceService.Prune(ctx)
		if err != nil {
			return fmt.Errorf("prune failed: %w", err)
		}
		pruned = report.Pruned
	}

	report, err := maintenanceService.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	report.Pruned = pruned

	if reindexJSON {
		return printJSON(cmd, report)
	}

	if reindexPrune {
		cmd.Printf("Pruned:    %d documents\n", report.Pruned)
	}
	cmd.Printf("Documents: %d\n", report.Documents)
	cmd.Printf("Indexed:   %d\n", report.Indexed)
	cmd.Printf("Vectors:   %d\n", report.Vectors)
	if len(report.Errors) > 0 {
		cmd.Printf("Errors:    %d\n", len(report.Errors))
		for i, e := range report.Errors {
			if i == maxListedErrors {
				cmd.Printf("  ... %d more\n", len(report.Errors)-maxListedErrors)
				break
			}
			cmd.Printf("  %s\n", e)
		}
	}
	return nil
}
