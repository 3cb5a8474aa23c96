package driven

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// DocumentStore persists documents with their category assignments and keywords.
// The relational store is the system of record for the corpus.
type DocumentStore interface {
	// SaveDocument upserts a document and replaces its category
	// assignments and keywords in one transaction.
	SaveDocument(ctx context.Context, rec *domain.DocumentRecord) error

	// GetDocument retrieves a document with its assignments and keywords.
	GetDocument(ctx context.Context, id string) (*domain.DocumentRecord, error)

	// DeleteDocument removes a document, cascading to assignments and keywords.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns a filtered page of documents and the total match count.
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, int, error)

	// Fingerprints returns the last known hash for every stored path.
	Fingerprints(ctx context.Context) (map[string]domain.FileFingerprint, error)

	// SearchTitles returns titles and keywords containing the fragment.
	SearchTitles(ctx context.Context, fragment string, limit int) ([]domain.Suggestion, error)

	// Stats aggregates corpus counters.
	Stats(ctx context.Context) (*domain.CorpusStats, error)

	// Clear removes every document.
	Clear(ctx context.Context) error
}

// CategoryStore persists the category catalog.
type CategoryStore interface {
	// Sync upserts the catalog idempotently and drops image assignments
	// from documents that are not images.
	Sync(ctx context.Context, categories []domain.Category) error

	// List returns every category with its document count.
	List(ctx context.Context) ([]domain.CategoryCount, error)
}

// ScanStore persists scan session history.
type ScanStore interface {
	// Save creates or updates a session.
	Save(ctx context.Context, session *domain.ScanSession) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*domain.ScanSession, error)

	// List returns the most recent sessions first.
	List(ctx context.Context, limit int) ([]domain.ScanSession, error)

	// Clear removes all sessions.
	Clear(ctx context.Context) error
}
