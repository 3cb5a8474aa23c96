package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:     "doc",
	Aliases: []string{"document", "docs"},
	Short:   "Manage indexed documents",
	Long:    `List, view, delete, reveal or ask questions about indexed documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document from the corpus",
	Long:  `Removes the document record together with its index and vector entries. The file itself is kept.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentAskCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about a document",
	Long:  `Answers a question from the document content using the configured AI provider.`,
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDocumentAsk,
}

var documentRevealCmd = &cobra.Command{
	Use:   "reveal [doc-id]",
	Short: "Open the folder containing a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReveal,
}

var (
	docListType     string
	docListCategory string
	docListQuery    string
	docListSort     string
	docListOrder    string
	docListPage     int
	docListLimit    int
	docJSON         bool
	docShowContent  bool
)

func init() {
	documentListCmd.Flags().StringVarP(&docListType, "type", "t", "", "filter by file type")
	documentListCmd.Flags().StringVarP(&docListCategory, "category", "c", "", "filter by category id")
	documentListCmd.Flags().StringVarP(&docListQuery, "query", "q", "", "filter titles containing text")
	documentListCmd.Flags().StringVar(&docListSort, "sort", "modified", "sort by modified, created or title")
	documentListCmd.Flags().StringVar(&docListOrder, "order", "desc", "sort order: asc or desc")
	documentListCmd.Flags().IntVarP(&docListPage, "page", "p", 1, "page number")
	documentListCmd.Flags().IntVarP(&docListLimit, "limit", "n", 20, "documents per page")
	documentListCmd.Flags().BoolVar(&docJSON, "json", false, "output as JSON")

	documentShowCmd.Flags().BoolVar(&docShowContent, "content", false, "print the extracted text")
	documentShowCmd.Flags().BoolVar(&docJSON, "json", false, "output as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentAskCmd)
	documentCmd.AddCommand(documentRevealCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	filter := domain.DocumentFilter{
		FileType:   domain.FileType(docListType),
		CategoryID: docListCategory,
		Query:      docListQuery,
		SortBy:     docListSort,
		SortOrder:  docListOrder,
		Page:       docListPage,
		Limit:      docListLimit,
	}
	records, total, err := documentService.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docJSON {
		return printJSON(cmd, map[string]any{"data": records, "total": total})
	}
	if len(records) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range records {
		d := &records[i].Document
		cmd.Printf("  %s\n", d.ID)
		cmd.Printf("    %s (%s, %s)\n", d.Title, d.FileType, humanize.IBytes(uint64(max(d.FileSize, 0))))
		if names := records[i].CategoryNames(); len(names) > 0 {
			cmd.Printf("    Categories: %s\n", strings.Join(names, ", "))
		}
		cmd.Printf("    Modified: %s\n", humanize.Time(d.ModifiedAt))
		cmd.Println()
	}

	pages := (total + docListLimit - 1) / max(docListLimit, 1)
	cmd.Printf("Page %d of %d (%d documents)\n", docListPage, max(pages, 1), total)
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	rec, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if docJSON {
		return printJSON(cmd, rec)
	}

	d := rec.Document
	cmd.Printf("Document: %s\n\n", d.ID)
	cmd.Printf("  Title:     %s\n", d.Title)
	cmd.Printf("  Path:      %s\n", d.FilePath)
	cmd.Printf("  Type:      %s\n", d.FileType)
	cmd.Printf("  Size:      %s\n", humanize.IBytes(uint64(max(d.FileSize, 0))))
	cmd.Printf("  Created:   %s\n", d.CreatedAt.Format(timeLayout))
	cmd.Printf("  Modified:  %s\n", d.ModifiedAt.Format(timeLayout))
	cmd.Printf("  Indexed:   %s\n", d.IndexedAt.Format(timeLayout))

	if len(rec.Categories) > 0 {
		cmd.Println("\n  Categories:")
		for _, c := range rec.Categories {
			cmd.Printf("    %-14s %3.0f%%  (%s)\n", c.CategoryName, c.Confidence*100, c.Source)
		}
	}
	if len(rec.Keywords) > 0 {
		cmd.Printf("\n  Keywords:  %s\n", strings.Join(rec.KeywordTexts(), ", "))
	}
	if d.Summary != "" {
		cmd.Printf("\n  Summary:\n    %s\n", d.Summary)
	}

	if len(d.Metadata) > 0 {
		keys := make([]string, 0, len(d.Metadata))
		for k := range d.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Println("\n  Metadata:")
		for _, k := range keys {
			cmd.Printf("    %s: %v\n", k, d.Metadata[k])
		}
	}

	if docShowContent {
		cmd.Println("\n  Content:")
		cmd.Println(d.Content)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentAsk(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	answer, err := documentService.Ask(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return fmt.Errorf("failed to ask document: %w", err)
	}
	cmd.Println(answer)
	return nil
}

func runDocumentReveal(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Reveal(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to reveal document: %w", err)
	}
	cmd.Printf("Revealed document %s in the file manager.\n", args[0])
	return nil
}
