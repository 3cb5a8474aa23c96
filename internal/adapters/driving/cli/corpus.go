package cli

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List document categories with their counts",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scan sessions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var clearCmd = &cobra.Command{
	Use:   "clear [history|all]",
	Short: "Clear scan history or the whole corpus",
	Long: `Clears stored data.

  history  removes scan sessions only
  all      removes every document, the scan history, the full-text index
           and the vector store

Files on disk are never touched.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(driving.ClearHistory), string(driving.ClearAll)},
	RunE:      runClear,
}

var (
	historyLimit int
	corpusJSON   bool
	clearYes     bool
)

func init() {
	categoriesCmd.Flags().BoolVar(&corpusJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of sessions")
	historyCmd.Flags().BoolVar(&corpusJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&corpusJSON, "json", false, "output as JSON")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	counts, err := documentService.Categories(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if corpusJSON {
		return printJSON(cmd, counts)
	}

	cmd.Println("Categories:")
	for _, c := range counts {
		cmd.Printf("  %-16s %-14s %-8s %d\n", c.ID, c.Name, c.LocalName, c.DocumentCount)
	}
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	sessions, err := documentService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if corpusJSON {
		return printJSON(cmd, sessions)
	}
	if len(sessions) == 0 {
		cmd.Println("No scans recorded.")
		return nil
	}

	for i := range sessions {
		s := &sessions[i]
		cmd.Printf("  %s  %-9s %s\n", shortID(s.ID), s.Status, s.RootPath)
		cmd.Printf("    started %s; %d processed, %d new, %d updated, %d errors\n",
			humanize.Time(s.StartedAt), s.ProcessedFiles, s.NewFiles, s.UpdatedFiles, len(s.Errors))
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if corpusJSON {
		return printJSON(cmd, stats)
	}

	cmd.Println("Corpus")
	cmd.Println("======")
	cmd.Printf("  Documents:    %s\n", humanize.Comma(int64(stats.Documents)))
	cmd.Printf("  Categories:   %d in use\n", stats.CategoriesInUse)
	cmd.Printf("  Keywords:     %s distinct\n", humanize.Comma(int64(stats.Keywords)))
	cmd.Printf("  Vectors:      %s\n", humanize.Comma(int64(stats.Vectors)))
	cmd.Printf("  Source size:  %s\n", humanize.IBytes(uint64(max(stats.StorageBytes, 0))))

	if len(stats.ByFileType) > 0 {
		types := make([]domain.FileType, 0, len(stats.ByFileType))
		for ft := range stats.ByFileType {
			types = append(types, ft)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		cmd.Println("\n  By type:")
		for _, ft := range types {
			cmd.Printf("    %-6s %d\n", ft, stats.ByFileType[ft])
		}
	}

	if s := stats.LastScan; s != nil {
		cmd.Printf("\n  Last scan:    %s (%s, %s)\n", s.RootPath, s.Status, humanize.Time(s.StartedAt))
	}
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	target := driving.ClearTarget(args[0])
	if !clearYes {
		cmd.Printf("This will permanently clear %s. Continue? [y/N]: ", target)
		reader := bufio.NewReader(cmd.InOrStdin())
		if answer := readLine(reader); !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := documentService.Clear(cmd.Context(), target); err != nil {
		return fmt.Errorf("failed to clear %s: %w", target, err)
	}
	cmd.Printf("Cleared %s.\n", target)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
