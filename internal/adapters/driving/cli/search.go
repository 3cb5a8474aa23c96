package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

var (
	searchMode       string
	searchCategories []string
	searchTypes      []string
	searchPage       int
	searchLimit      int
	searchSort       string
	searchJSON       bool
	suggestLimit     int
)

// highlighter renders <mark> spans for plain terminals.
var highlighter = strings.NewReplacer("<mark>", "*", "</mark>", "*")

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs hybrid search across all indexed documents.
Blends full-text ranking from the search index with semantic similarity from
the local vector store. If the full-text index is unreachable the results
fall back to semantic only.

Categories accept ids, slugs or display names; file types accept loose names
such as word, excel, ppt or image.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [fragment]",
	Short: "Suggest titles and keywords matching a fragment",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "hybrid", "search mode: hybrid, fulltext or semantic")
	searchCmd.Flags().StringSliceVarP(&searchCategories, "category", "c", nil, "filter by category")
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "filter by file type")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "result page")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVar(&searchSort, "sort", domain.SortRelevance, "sort by relevance, date or title")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)

	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 8, "maximum number of suggestions")
	rootCmd.AddCommand(suggestCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	mode := domain.SearchMode(searchMode)
	if !mode.IsValid() {
		return fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, searchMode)
	}

	resp, err := searchService.Search(cmd.Context(), domain.SearchQuery{
		Query:      strings.Join(args, " "),
		Mode:       mode,
		Categories: searchCategories,
		FileTypes:  searchTypes,
		Page:       searchPage,
		Limit:      searchLimit,
		SortBy:     searchSort,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, resp)
	}
	outputSearchTable(cmd, resp)
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) {
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Results: %d total, page %d/%d, %s, %s\n",
		resp.Total, resp.Page, resp.TotalPages, resp.Mode, resp.ProcessingTime)
	if resp.Degraded {
		cmd.Println("Full-text index unavailable; showing semantic matches only.")
	}
	cmd.Println()

	offset := (resp.Page - 1) * resp.Limit
	for i := range resp.Results {
		r := &resp.Results[i]
		title := r.Title
		if title == "" {
			title = r.ID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", offset+i+1, title, r.Score)
		line := fmt.Sprintf("%s · %s", r.FilePath, r.FileType)
		if len(r.CategoryNames) > 0 {
			line += " · " + strings.Join(r.CategoryNames, ", ")
		}
		cmd.Printf("      %s\n", line)

		snippet := r.Snippet
		if len(r.Highlights) > 0 {
			snippet = r.Highlights[0].Snippet
		}
		if snippet != "" {
			cmd.Printf("      %s\n", highlighter.Replace(snippet))
		}
		cmd.Printf("      id: %s\n", r.ID)
		cmd.Println()
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	suggestions, err := searchService.Suggest(cmd.Context(), args[0], suggestLimit)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}
	if len(suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for _, s := range suggestions {
		cmd.Printf("  %s (%s)\n", s.Text, s.Source)
	}
	return nil
}
