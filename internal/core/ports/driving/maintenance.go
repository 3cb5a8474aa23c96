package driving

import "context"

// ReindexReport summarises a maintenance run.
type ReindexReport struct {
	Documents int      `json:"documents"`
	Indexed   int      `json:"indexed"`
	Vectors   int      `json:"vectors"`
	Pruned    int      `json:"pruned"`
	Errors    []string `json:"errors,omitempty"`
}

// MaintenanceService rebuilds derived projections from the system of record.
type MaintenanceService interface {
	// Reindex pushes every stored document to the full-text index and vector store.
	Reindex(ctx context.Context) (*ReindexReport, error)

	// Prune deletes documents whose files no longer exist on disk.
	Prune(ctx context.Context) (*ReindexReport, error)

	// PrunePaths deletes the documents stored under paths that no longer
	// exist, returning how many were removed.
	PrunePaths(ctx context.Context, paths []string) (int, error)
}
