package driven

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// VectorStore holds one embedding per document and answers cosine
// similarity queries. Writes are idempotent upserts keyed by document id.
type VectorStore interface {
	// Add embeds text and stores it under id, replacing any existing entry.
	Add(ctx context.Context, id, text string, metadata map[string]string) error

	// AddBatch embeds and stores several items in one write.
	AddBatch(ctx context.Context, items []VectorItem) error

	// Remove deletes the entry for id. Removing a missing id is not an error.
	Remove(ctx context.Context, id string) error

	// Search returns at most limit entries whose similarity to the query
	// is at or above threshold, most similar first.
	Search(ctx context.Context, query string, limit int, threshold float64) ([]domain.VectorMatch, error)

	// Stats describes the store.
	Stats(ctx context.Context) (domain.VectorStats, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// VectorItem is a document to embed.
type VectorItem struct {
	ID       string
	Text     string
	Metadata map[string]string
}
