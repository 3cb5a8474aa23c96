package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsift/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docsift/internal/classifier"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockIndex implements driven.FullTextIndex for testing.
type mockIndex struct {
	mu           sync.Mutex
	healthErr    error
	configureErr error
	upsertErr    error
	searchErr    error
	result       *driven.IndexResult
	configured   int
	upserted     map[string]driven.IndexDocument
	upserts      int
	deleted      []string
	queries      []driven.IndexQuery
	resets       int
}

func newMockIndex() *mockIndex {
	return &mockIndex{upserted: make(map[string]driven.IndexDocument)}
}

func (m *mockIndex) Configure(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configured++
	return m.configureErr
}

func (m *mockIndex) Upsert(_ context.Context, docs ...driven.IndexDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, d := range docs {
		m.upserted[d.ID] = d
		m.upserts++
	}
	return nil
}

func (m *mockIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	delete(m.upserted, id)
	return nil
}

func (m *mockIndex) Search(_ context.Context, req driven.IndexQuery) (*driven.IndexResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, req)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.result == nil {
		return &driven.IndexResult{}, nil
	}
	return m.result, nil
}

func (m *mockIndex) Health(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthErr
}

func (m *mockIndex) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	m.upserted = make(map[string]driven.IndexDocument)
	return nil
}

func (m *mockIndex) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserted)
}

// mockAnswerer implements driven.QuestionAnswerer for testing.
type mockAnswerer struct {
	answer   string
	err      error
	question string
	content  string
}

func (m *mockAnswerer) Answer(_ context.Context, question, content string) (string, error) {
	m.question = question
	m.content = content
	return m.answer, m.err
}

// mockKeywords implements KeywordSuggester for testing.
type mockKeywords struct {
	keywords []string
	calls    int
}

func (m *mockKeywords) Keywords(_ context.Context, _ string, _ int) []string {
	m.calls++
	return m.keywords
}

// stubParser returns a fixed result or error.
type stubParser struct {
	doc *domain.ParsedDocument
	err error
}

func (p stubParser) Parse(_ context.Context, _ string) (*domain.ParsedDocument, error) {
	return p.doc, p.err
}

// countingParser reads the file as text and records each call.
type countingParser struct {
	mu    sync.Mutex
	paths []string
}

func (p *countingParser) Parse(_ context.Context, path string) (*domain.ParsedDocument, error) {
	p.mu.Lock()
	p.paths = append(p.paths, path)
	p.mu.Unlock()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &domain.ParsedDocument{Title: domain.TitleFromPath(path), Content: string(raw)}, nil
}

func (p *countingParser) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

// blockingParser blocks until released, ignoring ctx.
type blockingParser struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingParser() *blockingParser {
	return &blockingParser{started: make(chan struct{}), release: make(chan struct{})}
}

func (p *blockingParser) Parse(_ context.Context, path string) (*domain.ParsedDocument, error) {
	p.once.Do(func() { close(p.started) })
	<-p.release
	return &domain.ParsedDocument{Title: domain.TitleFromPath(path), Content: "late"}, nil
}

// testEnv wires services over in-memory stores.
type testEnv struct {
	store   *memory.Store
	index   *mockIndex
	vectors *flat.Store
	engine  *classifier.Engine
	catalog *classifier.Catalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	vectors, err := flat.New(t.TempDir(), 64)
	require.NoError(t, err)
	catalog := classifier.DefaultCatalog()
	return &testEnv{
		store:   memory.NewStore(),
		index:   newMockIndex(),
		vectors: vectors,
		engine:  classifier.NewEngine(classifier.NewRules(catalog, classifier.DefaultConfig()), nil, nil),
		catalog: catalog,
	}
}

func (e *testEnv) scanDeps(parsers driven.ParserRegistry) ScanDeps {
	return ScanDeps{
		Parsers:    parsers,
		Documents:  e.store.DocumentStore(),
		Categories: e.store.CategoryStore(),
		Scans:      e.store.ScanStore(),
		Classifier: e.engine,
		Summariser: classifier.RuleSummariser{},
		Index:      e.index,
		Vectors:    e.vectors,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// mockVectors implements driven.VectorStore with fixed search results.
type mockVectors struct {
	mu      sync.Mutex
	matches []domain.VectorMatch
	err     error
	added   map[string]string
	removed []string
	cleared int
}

func newMockVectors(matches ...domain.VectorMatch) *mockVectors {
	return &mockVectors{matches: matches, added: make(map[string]string)}
}

func (m *mockVectors) Add(_ context.Context, id, text string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.added[id] = text
	return nil
}

func (m *mockVectors) AddBatch(ctx context.Context, items []driven.VectorItem) error {
	for _, it := range items {
		if err := m.Add(ctx, it.ID, it.Text, it.Metadata); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockVectors) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, id)
	delete(m.added, id)
	return nil
}

func (m *mockVectors) Search(_ context.Context, _ string, limit int, _ float64) ([]domain.VectorMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.matches) > limit {
		return m.matches[:limit], nil
	}
	return m.matches, nil
}

func (m *mockVectors) Stats(_ context.Context) (domain.VectorStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.VectorStats{TotalVectors: len(m.added), Dimension: 64}, nil
}

func (m *mockVectors) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	m.added = make(map[string]string)
	return nil
}
