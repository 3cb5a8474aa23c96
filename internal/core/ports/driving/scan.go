package driving

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// ProgressFunc receives progress snapshots while a scan runs.
// It is called synchronously from the scanning goroutine.
type ProgressFunc func(domain.ScanProgress)

// ScanOrchestrator walks a root path and ingests new or changed files.
type ScanOrchestrator interface {
	// Scan runs a full session over root. Only one session may run at a time;
	// a concurrent call fails with domain.ErrScanInProgress.
	Scan(ctx context.Context, root string, opts domain.ScanOptions, progress ProgressFunc) (*domain.ScanSession, error)

	// Status returns a snapshot of the active session, or nil when idle.
	Status() *domain.ScanSession
}
