package driving

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// ClearTarget selects what DocumentService.Clear removes.
type ClearTarget string

// Clear targets.
const (
	ClearHistory ClearTarget = "history"
	ClearAll     ClearTarget = "all"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns a filtered page of documents and the total match count.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, int, error)

	// Get retrieves a document with its categories and keywords.
	Get(ctx context.Context, id string) (*domain.DocumentRecord, error)

	// Delete removes a document from the store, the index and the vector store.
	Delete(ctx context.Context, id string) error

	// Reveal shows the document's file in the platform file manager.
	Reveal(ctx context.Context, id string) error

	// Ask answers a question about a document's content.
	Ask(ctx context.Context, id, question string) (string, error)

	// Categories lists the catalog with document counts.
	Categories(ctx context.Context) ([]domain.CategoryCount, error)

	// Stats summarises the corpus.
	Stats(ctx context.Context) (*domain.CorpusStats, error)

	// History returns recent scan sessions.
	History(ctx context.Context, limit int) ([]domain.ScanSession, error)

	// Clear removes scan history, or everything including derived indexes.
	Clear(ctx context.Context, target ClearTarget) error
}
