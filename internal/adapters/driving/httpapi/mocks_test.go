package httpapi

import (
	"context"
	"sync"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

type mockSearchService struct {
	last domain.SearchQuery
	resp *domain.SearchResponse
	err  error
}

func (m *mockSearchService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	m.last = q
	if m.err != nil {
		return nil, m.err
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &domain.SearchResponse{Results: []domain.SearchResult{}, Page: 1, Query: q.Query, Mode: domain.SearchModeHybrid}, nil
}

func (m *mockSearchService) Suggest(_ context.Context, fragment string, _ int) ([]domain.Suggestion, error) {
	if len(fragment) < 2 {
		return nil, nil
	}
	return []domain.Suggestion{{Text: fragment + " plan", Source: "title"}}, nil
}

type mockDocumentService struct {
	records  map[string]*domain.DocumentRecord
	filter   domain.DocumentFilter
	deleted  []string
	revealed []string
	cleared  []driving.ClearTarget
}

func newMockDocuments(recs ...*domain.DocumentRecord) *mockDocumentService {
	m := &mockDocumentService{records: make(map[string]*domain.DocumentRecord)}
	for _, r := range recs {
		m.records[r.Document.ID] = r
	}
	return m
}

func (m *mockDocumentService) List(_ context.Context, f domain.DocumentFilter) ([]domain.DocumentRecord, int, error) {
	m.filter = f
	out := make([]domain.DocumentRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.DocumentRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.records, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocumentService) Reveal(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return domain.ErrNotFound
	}
	m.revealed = append(m.revealed, id)
	return nil
}

func (m *mockDocumentService) Ask(_ context.Context, id, question string) (string, error) {
	if _, ok := m.records[id]; !ok {
		return "", domain.ErrNotFound
	}
	return "answer to " + question, nil
}

func (m *mockDocumentService) Categories(context.Context) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Category: domain.Category{ID: "tech", Name: "Technical"}, DocumentCount: 1}}, nil
}

func (m *mockDocumentService) Stats(context.Context) (*domain.CorpusStats, error) {
	return &domain.CorpusStats{Documents: len(m.records)}, nil
}

func (m *mockDocumentService) History(context.Context, int) ([]domain.ScanSession, error) {
	return nil, nil
}

func (m *mockDocumentService) Clear(_ context.Context, target driving.ClearTarget) error {
	if target != driving.ClearHistory && target != driving.ClearAll {
		return domain.ErrInvalidInput
	}
	m.cleared = append(m.cleared, target)
	return nil
}

type mockSettingsService struct {
	updates map[string]string
	testErr error
}

func (m *mockSettingsService) Get() ([]domain.SettingView, error) {
	return []domain.SettingView{
		{Key: domain.SettingAIMode, Value: "off", Configured: true},
		{Key: domain.SettingDashScopeAPIKey, Value: "sk-12345***", Configured: true, Sensitive: true},
	}, nil
}

func (m *mockSettingsService) Update(values map[string]string) ([]string, error) {
	m.updates = values
	var keys []string
	for k, v := range values {
		if !domain.IsSettingKey(k) {
			return nil, domain.ErrInvalidInput
		}
		if v != "" {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockSettingsService) Value(string) string { return "" }

func (m *mockSettingsService) Test(_ context.Context, target string) error {
	if target != "llm" && target != "meilisearch" {
		return domain.ErrInvalidInput
	}
	return m.testErr
}

type mockMaintenanceService struct {
	pruned bool
}

func (m *mockMaintenanceService) Reindex(context.Context) (*driving.ReindexReport, error) {
	return &driving.ReindexReport{Documents: 3, Indexed: 3, Vectors: 3}, nil
}

func (m *mockMaintenanceService) Prune(context.Context) (*driving.ReindexReport, error) {
	m.pruned = true
	return &driving.ReindexReport{Pruned: 1}, nil
}

func (m *mockMaintenanceService) PrunePaths(context.Context, []string) (int, error) {
	return 0, nil
}

type mockScanOrchestrator struct {
	mu      sync.Mutex
	active  *domain.ScanSession
	started chan string
}

func (m *mockScanOrchestrator) Scan(
	_ context.Context, root string, _ domain.ScanOptions, _ driving.ProgressFunc,
) (*domain.ScanSession, error) {
	m.started <- root
	return &domain.ScanSession{RootPath: root, Status: domain.ScanCompleted}, nil
}

func (m *mockScanOrchestrator) Status() *domain.ScanSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}
