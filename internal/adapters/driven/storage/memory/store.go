package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.CategoryStore = (*CategoryStore)(nil)
	_ driven.ScanStore     = (*ScanStore)(nil)
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Store groups the in-memory document, category and scan stores so they
// can answer cross-store queries the way the relational store does.
type Store struct {
	mu         sync.RWMutex
	documents  map[string]domain.DocumentRecord
	categories map[string]domain.Category
	scans      map[string]domain.ScanSession
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents:  make(map[string]domain.DocumentRecord),
		categories: make(map[string]domain.Category),
		scans:      make(map[string]domain.ScanSession),
	}
}

// DocumentStore returns the document view of the store.
func (s *Store) DocumentStore() *DocumentStore { return &DocumentStore{store: s} }

// CategoryStore returns the category view of the store.
func (s *Store) CategoryStore() *CategoryStore { return &CategoryStore{store: s} }

// ScanStore returns the scan session view of the store.
func (s *Store) ScanStore() *ScanStore { return &ScanStore{store: s} }

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	store *Store
}

// NewDocumentStore creates a document store backed by a fresh Store.
func NewDocumentStore() *DocumentStore {
	return NewStore().DocumentStore()
}

// SaveDocument stores a deep copy of the record, keyed by id.
// A record reusing another document's path replaces it.
func (d *DocumentStore) SaveDocument(_ context.Context, rec *domain.DocumentRecord) error {
	if rec == nil || rec.Document.ID == "" || rec.Document.FilePath == "" {
		return domain.ErrInvalidInput
	}
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.documents {
		if id != rec.Document.ID && existing.Document.FilePath == rec.Document.FilePath {
			delete(s.documents, id)
		}
	}
	c := cloneRecord(*rec)
	for i, cl := range c.Categories {
		if cat, ok := s.categories[cl.CategoryID]; ok && cl.CategoryName == "" {
			c.Categories[i].CategoryName = cat.Name
		}
	}
	s.documents[rec.Document.ID] = c
	return nil
}

// GetDocument retrieves a document by ID.
func (d *DocumentStore) GetDocument(_ context.Context, id string) (*domain.DocumentRecord, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	rec, ok := d.store.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneRecord(rec)
	return &c, nil
}

// DeleteDocument removes a document.
func (d *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if _, ok := d.store.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(d.store.documents, id)
	return nil
}

// ListDocuments filters, sorts and pages documents. Content is omitted.
func (d *DocumentStore) ListDocuments(_ context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, int, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	var matched []domain.DocumentRecord
	for _, rec := range d.store.documents {
		if filter.FileType != "" && rec.Document.FileType != filter.FileType {
			continue
		}
		if filter.CategoryID != "" && !hasCategory(rec, filter.CategoryID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(rec.Document.Title), q) &&
			!strings.Contains(strings.ToLower(rec.Document.Content), q) {
			continue
		}
		matched = append(matched, rec)
	}

	asc := strings.EqualFold(filter.SortOrder, "asc")
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].Document, matched[j].Document
		var less, equal bool
		switch filter.SortBy {
		case domain.SortTitle:
			less, equal = a.Title < b.Title, a.Title == b.Title
		case domain.SortDate, "modified", "modifiedAt":
			less, equal = a.ModifiedAt.Before(b.ModifiedAt), a.ModifiedAt.Equal(b.ModifiedAt)
		default:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if equal {
			return a.ID < b.ID
		}
		if asc {
			return less
		}
		return !less
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := min(start+limit, total)

	out := make([]domain.DocumentRecord, 0, end-start)
	for _, rec := range matched[start:end] {
		c := cloneRecord(rec)
		c.Document.Content = ""
		out = append(out, c)
	}
	return out, total, nil
}

// Fingerprints returns the stored hash for every path.
func (d *DocumentStore) Fingerprints(_ context.Context) (map[string]domain.FileFingerprint, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	out := make(map[string]domain.FileFingerprint, len(d.store.documents))
	for _, rec := range d.store.documents {
		out[rec.Document.FilePath] = domain.FileFingerprint{
			DocumentID:  rec.Document.ID,
			ContentHash: rec.Document.ContentHash,
			CreatedAt:   rec.Document.CreatedAt,
		}
	}
	return out, nil
}

// SearchTitles suggests matching titles first, then keywords.
func (d *DocumentStore) SearchTitles(_ context.Context, fragment string, limit int) ([]domain.Suggestion, error) {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" || limit <= 0 {
		return nil, nil
	}
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	recs := make([]domain.DocumentRecord, 0, len(d.store.documents))
	for _, rec := range d.store.documents {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Document.ModifiedAt.After(recs[j].Document.ModifiedAt)
	})

	seen := make(map[string]bool)
	var out []domain.Suggestion
	add := func(text, source string) {
		key := strings.ToLower(text)
		if len(out) < limit && !seen[key] && strings.Contains(key, fragment) {
			seen[key] = true
			out = append(out, domain.Suggestion{Text: text, Source: source})
		}
	}
	for _, rec := range recs {
		add(rec.Document.Title, "title")
	}

	weights := make(map[string]float64)
	for _, rec := range recs {
		for _, k := range rec.Keywords {
			weights[k.Keyword] += k.Weight
		}
	}
	keywords := make([]string, 0, len(weights))
	for k := range weights {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if weights[keywords[i]] == weights[keywords[j]] {
			return keywords[i] < keywords[j]
		}
		return weights[keywords[i]] > weights[keywords[j]]
	})
	for _, k := range keywords {
		add(k, "keyword")
	}
	return out, nil
}

// Stats aggregates corpus counters. Vectors is left for the caller.
func (d *DocumentStore) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	d.store.mu.RLock()
	stats := &domain.CorpusStats{ByFileType: make(map[domain.FileType]int)}
	cats := make(map[string]bool)
	kws := make(map[string]bool)
	for _, rec := range d.store.documents {
		stats.Documents++
		stats.StorageBytes += rec.Document.FileSize
		stats.ByFileType[rec.Document.FileType]++
		for _, c := range rec.Categories {
			cats[c.CategoryID] = true
		}
		for _, k := range rec.Keywords {
			kws[k.Keyword] = true
		}
	}
	d.store.mu.RUnlock()
	stats.CategoriesInUse = len(cats)
	stats.Keywords = len(kws)

	last, err := d.store.ScanStore().List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(last) > 0 {
		stats.LastScan = &last[0]
	}
	return stats, nil
}

// Clear removes every document.
func (d *DocumentStore) Clear(_ context.Context) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	d.store.documents = make(map[string]domain.DocumentRecord)
	return nil
}

// CategoryStore is an in-memory implementation of driven.CategoryStore.
type CategoryStore struct {
	store *Store
}

// Sync upserts the catalog and drops image assignments from non-image documents.
func (c *CategoryStore) Sync(_ context.Context, categories []domain.Category) error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cat := range categories {
		s.categories[cat.ID] = cat
	}
	for id, rec := range s.documents {
		if rec.Document.FileType == domain.FileTypeImage {
			continue
		}
		kept := rec.Categories[:0:0]
		for _, cl := range rec.Categories {
			if cl.CategoryID != domain.CategoryImage {
				kept = append(kept, cl)
			}
		}
		rec.Categories = kept
		s.documents[id] = rec
	}
	return nil
}

// List returns every category in sort order with its document count.
func (c *CategoryStore) List(_ context.Context) ([]domain.CategoryCount, error) {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CategoryCount, 0, len(s.categories))
	for _, cat := range s.categories {
		cc := domain.CategoryCount{Category: cat}
		for _, rec := range s.documents {
			if hasCategory(rec, cat.ID) {
				cc.DocumentCount++
			}
		}
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder == out[j].SortOrder {
			return out[i].ID < out[j].ID
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

// ScanStore is an in-memory implementation of driven.ScanStore.
type ScanStore struct {
	store *Store
}

// Save creates or updates a session.
func (c *ScanStore) Save(_ context.Context, session *domain.ScanSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.scans[session.ID] = *session.Clone()
	return nil
}

// Get retrieves a session by ID.
func (c *ScanStore) Get(_ context.Context, id string) (*domain.ScanSession, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	sess, ok := c.store.scans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess.Clone(), nil
}

// List returns the most recent sessions first.
func (c *ScanStore) List(_ context.Context, limit int) ([]domain.ScanSession, error) {
	if limit <= 0 {
		limit = 10
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	out := make([]domain.ScanSession, 0, len(c.store.scans))
	for _, sess := range c.store.scans {
		out = append(out, *sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Clear removes all sessions.
func (c *ScanStore) Clear(_ context.Context) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.scans = make(map[string]domain.ScanSession)
	return nil
}

func hasCategory(rec domain.DocumentRecord, id string) bool {
	for _, c := range rec.Categories {
		if c.CategoryID == id {
			return true
		}
	}
	return false
}

func cloneRecord(rec domain.DocumentRecord) domain.DocumentRecord {
	c := rec
	c.Categories = append([]domain.Classification(nil), rec.Categories...)
	c.Keywords = append([]domain.Keyword(nil), rec.Keywords...)
	if rec.Document.Metadata != nil {
		c.Document.Metadata = make(map[string]any, len(rec.Document.Metadata))
		for k, v := range rec.Document.Metadata {
			c.Document.Metadata[k] = v
		}
	}
	return c
}
