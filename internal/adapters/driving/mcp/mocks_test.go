package mcp

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	last    domain.SearchQuery
}

func (m *mockSearchService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	m.last = q
	if m.err != nil {
		return nil, m.err
	}
	mode := q.Mode
	if mode == "" {
		mode = domain.SearchModeHybrid
	}
	return &domain.SearchResponse{
		Results:    m.results,
		Total:      len(m.results),
		Page:       1,
		Limit:      q.Limit,
		TotalPages: 1,
		Query:      q.Query,
		Mode:       mode,
	}, nil
}

func (m *mockSearchService) Suggest(context.Context, string, int) ([]domain.Suggestion, error) {
	return nil, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
// Methods the MCP server never calls panic through the nil embedded interface.
type mockDocumentService struct {
	driving.DocumentService

	records    map[string]*domain.DocumentRecord
	categories []domain.CategoryCount
	answer     string
	err        error
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.DocumentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (m *mockDocumentService) Categories(context.Context) ([]domain.CategoryCount, error) {
	return m.categories, m.err
}

func (m *mockDocumentService) Ask(_ context.Context, id, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if _, ok := m.records[id]; !ok {
		return "", domain.ErrNotFound
	}
	return m.answer, nil
}

func sampleRecord() *domain.DocumentRecord {
	return &domain.DocumentRecord{
		Document: domain.Document{
			ID:       "doc-1",
			Title:    "Quarterly report",
			FilePath: "/docs/q3.pdf",
			FileType: domain.FileTypePDF,
			FileSize: 2048,
			Summary:  "Revenue grew.",
			Content:  "Revenue grew twelve percent in the third quarter.",
		},
		Categories: []domain.Classification{
			{CategoryID: domain.CategoryReport, CategoryName: "Report", Confidence: 0.8},
		},
		Keywords: []domain.Keyword{{Keyword: "revenue", Weight: 1, Frequency: 3}},
	}
}
