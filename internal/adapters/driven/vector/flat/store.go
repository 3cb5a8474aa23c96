// Package flat provides a brute-force vector store over hashed
// bag-of-words embeddings, persisted as a single JSON file.
package flat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// FileName is the name of the persisted blob inside the store directory.
const FileName = "embeddings.json"

type blob struct {
	Dimension int                  `json:"dimension"`
	Vectors   []domain.VectorEntry `json:"vectors"`
}

// Store keeps every vector in memory and rewrites the blob on each
// mutation. Entries keep insertion order; an upsert replaces in place.
type Store struct {
	mu        sync.RWMutex
	path      string
	dimension int
	entries   []domain.VectorEntry
	index     map[string]int
}

// New opens or creates a store in dir. A persisted blob with a different
// dimension is discarded.
func New(dir string, dimension int) (*Store, error) {
	if dir == "" {
		return nil, errors.New("flat: directory cannot be empty")
	}
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create vector dir: %w", err)
	}

	s := &Store{
		path:      filepath.Join(dir, FileName),
		dimension: dimension,
		index:     make(map[string]int),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read vectors: %w", err)
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		logger.Warn("vector store %s is corrupt, starting empty: %v", s.path, err)
		return nil
	}
	if b.Dimension != s.dimension {
		logger.Warn("vector store dimension %d does not match %d, starting empty", b.Dimension, s.dimension)
		return nil
	}

	for _, e := range b.Vectors {
		if len(e.Vector) != s.dimension {
			continue
		}
		s.entries = put(s.entries, s.index, e)
	}
	return nil
}

// put upserts e into entries, keeping index in step.
func put(entries []domain.VectorEntry, index map[string]int, e domain.VectorEntry) []domain.VectorEntry {
	if i, ok := index[e.ID]; ok {
		entries[i] = e
		return entries
	}
	index[e.ID] = len(entries)
	return append(entries, e)
}

// save writes entries atomically (caller must hold lock). The in-memory
// state is only replaced once save succeeds.
func (s *Store) save(entries []domain.VectorEntry) error {
	data, err := json.Marshal(blob{Dimension: s.dimension, Vectors: entries})
	if err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".embeddings-*.tmp")
	if err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	return nil
}

// Add embeds text and stores it under id.
func (s *Store) Add(ctx context.Context, id, text string, metadata map[string]string) error {
	return s.AddBatch(ctx, []driven.VectorItem{{ID: id, Text: text, Metadata: metadata}})
}

// AddBatch embeds and stores several items with a single write.
func (s *Store) AddBatch(ctx context.Context, items []driven.VectorItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	for _, it := range items {
		if it.ID == "" {
			return fmt.Errorf("%w: empty vector id", domain.ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := slices.Clone(s.entries)
	index := maps.Clone(s.index)
	for _, it := range items {
		entries = put(entries, index, domain.VectorEntry{
			ID:       it.ID,
			Vector:   Embed(it.Text, s.dimension),
			Metadata: it.Metadata,
		})
	}
	if err := s.save(entries); err != nil {
		return err
	}
	s.entries, s.index = entries, index
	return nil
}

// Remove deletes the entry for id.
func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil
	}
	entries := slices.Delete(slices.Clone(s.entries), i, i+1)
	if err := s.save(entries); err != nil {
		return err
	}
	s.entries = entries
	delete(s.index, id)
	for j := i; j < len(s.entries); j++ {
		s.index[s.entries[j].ID] = j
	}
	return nil
}

// Search ranks every entry by cosine similarity to the embedded query.
func (s *Store) Search(ctx context.Context, query string, limit int, threshold float64) ([]domain.VectorMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	q := Embed(query, s.dimension)

	s.mu.RLock()
	matches := make([]domain.VectorMatch, 0, len(s.entries))
	for _, e := range s.entries {
		sim := Cosine(q, e.Vector)
		if sim < threshold {
			continue
		}
		matches = append(matches, domain.VectorMatch{ID: e.ID, Similarity: sim, Metadata: e.Metadata})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Has reports whether id has a stored vector.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Stats describes the store.
func (s *Store) Stats(_ context.Context) (domain.VectorStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.VectorStats{TotalVectors: len(s.entries), Dimension: s.dimension}
	if fi, err := os.Stat(s.path); err == nil {
		stats.StorageBytes = fi.Size()
	}
	return stats, nil
}

// Clear removes every entry.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(nil); err != nil {
		return err
	}
	s.entries = nil
	s.index = make(map[string]int)
	return nil
}

// Path returns the blob location.
func (s *Store) Path() string {
	return s.path
}
