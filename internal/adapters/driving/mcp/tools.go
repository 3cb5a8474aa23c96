package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	defaultContentSize = 8000
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string   `json:"query" jsonschema:"the search query"`
	Mode       string   `json:"mode,omitempty" jsonschema:"hybrid (default), fulltext or semantic"`
	Categories []string `json:"categories,omitempty" jsonschema:"category ids, slugs or display names to filter by"`
	FileTypes  []string `json:"file_types,omitempty" jsonschema:"file types to filter by, e.g. pdf, word, excel, image"`
	Page       int      `json:"page,omitempty" jsonschema:"1-based result page (default 1)"`
	Limit      int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results    []SearchResultOutput `json:"results"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	Mode       string               `json:"mode"`
	Degraded   bool                 `json:"degraded,omitempty"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	FileType   string   `json:"file_type"`
	Score      float64  `json:"score"`
	Categories []string `json:"categories,omitempty"`
	Snippet    string   `json:"snippet,omitempty"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	ID             string `json:"id" jsonschema:"the document id"`
	IncludeContent bool   `json:"include_content,omitempty" jsonschema:"include extracted text"`
	MaxChars       int    `json:"max_chars,omitempty" jsonschema:"truncate content to this many characters (default 8000)"`
}

// DocumentOutput is the output schema for the get_document tool.
type DocumentOutput struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Path       string           `json:"path"`
	FileType   string           `json:"file_type"`
	Size       int64            `json:"size"`
	Summary    string           `json:"summary,omitempty"`
	Categories []CategoryOutput `json:"categories,omitempty"`
	Keywords   []string         `json:"keywords,omitempty"`
	Content    string           `json:"content,omitempty"`
	Truncated  bool             `json:"truncated,omitempty"`
}

// CategoryOutput is a category assignment or catalog entry.
type CategoryOutput struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	LocalName  string  `json:"local_name,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Documents  int     `json:"documents,omitempty"`
}

// ListCategoriesInput is the (empty) input schema for list_categories.
type ListCategoriesInput struct{}

// ListCategoriesOutput is the output schema for list_categories.
type ListCategoriesOutput struct {
	Categories []CategoryOutput `json:"categories"`
}

// AskDocumentInput is the input schema for the ask_document tool.
type AskDocumentInput struct {
	ID       string `json:"id" jsonschema:"the document id"`
	Question string `json:"question" jsonschema:"the question to answer from the document"`
}

// AskDocumentOutput is the output schema for the ask_document tool.
type AskDocumentOutput struct {
	Answer string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	reads := &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true, OpenWorldHint: &closedWorld}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Title:       "Search documents",
		Description: "Rank indexed documents by keyword relevance and meaning. Results carry highlighted snippets and the categories each document was filed under.",
		Annotations: reads,
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Title:       "Open document",
		Description: "Fetch one document's summary, categories with confidence, extracted keywords and, on request, its extracted text.",
		Annotations: reads,
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_categories",
		Title:       "List categories",
		Description: "List the classification categories with their local names and how many documents each holds.",
		Annotations: reads,
	}, s.handleListCategories)

	// Answers come from the configured language model.
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_document",
		Title:       "Ask a document",
		Description: "Answer a question from the extracted text of one document. Requires AI to be enabled in settings.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: &openWorld},
	}, s.handleAskDocument)
}

var (
	openWorld   = true
	closedWorld = false
)

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	resp, err := s.ports.Search.Search(ctx, domain.SearchQuery{
		Query:      input.Query,
		Mode:       domain.SearchMode(input.Mode),
		Categories: input.Categories,
		FileTypes:  input.FileTypes,
		Page:       input.Page,
		Limit:      limit,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:    make([]SearchResultOutput, len(resp.Results)),
		Total:      resp.Total,
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
		Mode:       resp.Mode.String(),
		Degraded:   resp.Degraded,
	}

	for i := range resp.Results {
		r := &resp.Results[i]
		snippet := r.Snippet
		if len(r.Highlights) > 0 {
			snippet = r.Highlights[0].Snippet
		}
		output.Results[i] = SearchResultOutput{
			DocumentID: r.ID,
			Title:      r.Title,
			Path:       r.FilePath,
			FileType:   r.FileType.String(),
			Score:      r.Score,
			Categories: r.CategoryNames,
			Snippet:    snippet,
		}
	}

	return nil, output, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Document == nil {
		return nil, DocumentOutput{}, ErrDocumentsUnavailable
	}

	rec, err := s.ports.Document.Get(ctx, input.ID)
	if err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("getting document: %w", err)
	}

	doc := rec.Document
	output := DocumentOutput{
		ID:       doc.ID,
		Title:    doc.Title,
		Path:     doc.FilePath,
		FileType: doc.FileType.String(),
		Size:     doc.FileSize,
		Summary:  doc.Summary,
		Keywords: rec.KeywordTexts(),
	}
	for _, c := range rec.Categories {
		output.Categories = append(output.Categories, CategoryOutput{
			ID:         c.CategoryID,
			Name:       c.CategoryName,
			Confidence: c.Confidence,
		})
	}

	if input.IncludeContent {
		limit := input.MaxChars
		if limit <= 0 {
			limit = defaultContentSize
		}
		output.Content, output.Truncated = truncateRunes(doc.Content, limit)
	}

	return nil, output, nil
}

func (s *Server) handleListCategories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCategoriesInput,
) (*mcp.CallToolResult, ListCategoriesOutput, error) {
	if s.ports.Document == nil {
		return nil, ListCategoriesOutput{}, ErrDocumentsUnavailable
	}

	counts, err := s.ports.Document.Categories(ctx)
	if err != nil {
		return nil, ListCategoriesOutput{}, fmt.Errorf("listing categories: %w", err)
	}

	output := ListCategoriesOutput{Categories: make([]CategoryOutput, len(counts))}
	for i, c := range counts {
		output.Categories[i] = CategoryOutput{
			ID:        c.ID,
			Name:      c.Name,
			LocalName: c.LocalName,
			Documents: c.DocumentCount,
		}
	}
	return nil, output, nil
}

func (s *Server) handleAskDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskDocumentInput,
) (*mcp.CallToolResult, AskDocumentOutput, error) {
	if s.ports.Document == nil {
		return nil, AskDocumentOutput{}, ErrDocumentsUnavailable
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskDocumentOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	answer, err := s.ports.Document.Ask(ctx, input.ID, input.Question)
	if err != nil {
		return nil, AskDocumentOutput{}, fmt.Errorf("asking document: %w", err)
	}
	return nil, AskDocumentOutput{Answer: answer}, nil
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= n {
		return s, false
	}
	return string(runes[:n]), true
}
