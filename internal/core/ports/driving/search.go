package driving

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// SearchService provides hybrid search operations.
type SearchService interface {
	// Search executes a query across the full-text index and vector store.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error)

	// Suggest returns titles and keywords containing the fragment.
	Suggest(ctx context.Context, fragment string, limit int) ([]domain.Suggestion, error)
}
