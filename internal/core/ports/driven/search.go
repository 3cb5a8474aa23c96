package driven

import (
	"context"
	"time"
)

// FullTextIndex is the remote full-text index.
// Writes are idempotent upserts keyed by document id.
type FullTextIndex interface {
	// Configure creates the index and applies searchable, filterable
	// and sortable attribute settings.
	Configure(ctx context.Context) error

	// Upsert adds or replaces documents.
	Upsert(ctx context.Context, docs ...IndexDocument) error

	// Delete removes a document by id.
	Delete(ctx context.Context, id string) error

	// Search runs a filtered, sorted, highlighted query.
	Search(ctx context.Context, req IndexQuery) (*IndexResult, error)

	// Health reports whether the index is reachable.
	Health(ctx context.Context) error

	// Reset drops every document from the index.
	Reset(ctx context.Context) error
}

// IndexDocument is the projection of a document held by the remote index.
type IndexDocument struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Summary       string   `json:"summary"`
	FileType      string   `json:"fileType"`
	FilePath      string   `json:"filePath"`
	Categories    []string `json:"categories"`
	CategoryNames []string `json:"categoryNames"`
	Keywords      []string `json:"keywords"`
	CreatedAt     int64    `json:"createdAt"`
	ModifiedAt    int64    `json:"modifiedAt"`
	FileSize      int64    `json:"fileSize"`
}

// IndexQuery is a search request in the index's canonical vocabulary.
type IndexQuery struct {
	Query  string
	Filter string
	Sort   []string
	Limit  int
	Offset int
}

// IndexHit is one matched document. Formatted holds highlighted field values.
// RankingScore is zero when the index does not supply one.
type IndexHit struct {
	Document     IndexDocument
	Formatted    map[string]string
	RankingScore float64
}

// IndexResult is a page of hits.
type IndexResult struct {
	Hits           []IndexHit
	EstimatedTotal int
	ProcessingTime time.Duration
}
