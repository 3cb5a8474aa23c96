package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Ensure MaintenanceService implements the interface.
var _ driving.MaintenanceService = (*MaintenanceService)(nil)

const listPageSize = 100

// MaintenanceService rebuilds the full-text index and vector store from
// the relational store, and prunes documents whose files are gone.
type MaintenanceService struct {
	docs    driven.DocumentStore
	index   driven.FullTextIndex
	vectors driven.VectorStore
	workers int
}

// NewMaintenanceService creates a maintenance service. index and vectors
// may be nil. workers defaults to half the CPUs, minimum 1.
func NewMaintenanceService(
	docs driven.DocumentStore,
	index driven.FullTextIndex,
	vectors driven.VectorStore,
	workers int,
) *MaintenanceService {
	if workers < 1 {
		workers = runtime.NumCPU() / 2
	}
	if workers < 1 {
		workers = 1
	}
	return &MaintenanceService{docs: docs, index: index, vectors: vectors, workers: workers}
}

// Reindex re-pushes every stored document. Documents are loaded and sent
// to the index by a worker pool; embeddings are written in one batch.
func (s *MaintenanceService) Reindex(ctx context.Context) (*driving.ReindexReport, error) {
	if s.index == nil && s.vectors == nil {
		return nil, fmt.Errorf("%w: no index or vector store configured", domain.ErrSearchUnavailable)
	}
	logger.Section("Reindex")

	index := s.index
	if index != nil {
		if err := index.Health(ctx); err != nil {
			logger.Warn("Full-text index unavailable, rebuilding vectors only: %v", err)
			index = nil
		} else if err := index.Configure(ctx); err != nil {
			logger.Warn("Failed to configure full-text index: %v", err)
		}
	}

	ids, err := s.allIDs(ctx)
	if err != nil {
		return nil, err
	}
	report := &driving.ReindexReport{Documents: len(ids)}
	if index == nil && s.index != nil {
		report.Errors = append(report.Errors, domain.ErrSearchUnavailable.Error())
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items = make([]driven.VectorItem, 0, len(ids))
	)
	fail := func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", id, err))
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		id := id
		submitErr := pool.Submit(func() {
			defer wg.Done()
			rec, err := s.docs.GetDocument(ctx, id)
			if err != nil {
				fail(id, err)
				return
			}
			if index != nil {
				if err := index.Upsert(ctx, toIndexDocument(rec)); err != nil {
					fail(id, err)
				} else {
					mu.Lock()
					report.Indexed++
					mu.Unlock()
				}
			}
			if s.vectors != nil {
				mu.Lock()
				items = append(items, toVectorItem(rec))
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(id, submitErr)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("reindex cancelled: %w", err)
	}

	if s.vectors != nil && len(items) > 0 {
		if err := s.vectors.AddBatch(ctx, items); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("vectors: %v", err))
		} else {
			report.Vectors = len(items)
		}
	}

	logger.Info("Reindexed %d documents: %d indexed, %d vectors, %d errors",
		report.Documents, report.Indexed, report.Vectors, len(report.Errors))
	return report, nil
}

// Prune deletes documents whose files no longer exist on disk, along
// with their index and vector entries.
func (s *MaintenanceService) Prune(ctx context.Context) (*driving.ReindexReport, error) {
	var stale []domain.Document
	err := s.eachDocument(ctx, func(doc domain.Document) {
		if _, err := os.Stat(doc.FilePath); errors.Is(err, os.ErrNotExist) {
			stale = append(stale, doc)
		}
	})
	if err != nil {
		return nil, err
	}

	report := &driving.ReindexReport{}
	for _, doc := range stale {
		if err := s.docs.DeleteDocument(ctx, doc.ID); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", doc.FilePath, err))
			continue
		}
		s.dropProjections(ctx, doc.ID)
		logger.Debug("Pruned %s", doc.FilePath)
		report.Pruned++
	}
	logger.Info("Pruned %d missing documents", report.Pruned)
	return report, nil
}

// PrunePaths deletes the documents stored under the given paths. A path
// may name a file or a directory; a removed directory prunes every
// document beneath it. It is used by the watcher for removed files.
func (s *MaintenanceService) PrunePaths(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	fps, err := s.docs.Fingerprints(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading fingerprints: %w", err)
	}

	seen := make(map[string]bool)
	pruned := 0
	for _, p := range paths {
		p = filepath.Clean(p)
		prefix := p + string(filepath.Separator)
		for path, fp := range fps {
			if path != p && !strings.HasPrefix(path, prefix) {
				continue
			}
			if seen[fp.DocumentID] {
				continue
			}
			seen[fp.DocumentID] = true
			if _, err := os.Stat(path); err == nil {
				continue
			}
			if err := s.docs.DeleteDocument(ctx, fp.DocumentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return pruned, fmt.Errorf("deleting %s: %w", path, err)
			}
			s.dropProjections(ctx, fp.DocumentID)
			logger.Debug("Pruned %s", path)
			pruned++
		}
	}
	return pruned, nil
}

func (s *MaintenanceService) dropProjections(ctx context.Context, id string) {
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			logger.Warn("Failed to remove %s from full-text index: %v", id, err)
		}
	}
	if s.vectors != nil {
		if err := s.vectors.Remove(ctx, id); err != nil {
			logger.Warn("Failed to remove %s from vector store: %v", id, err)
		}
	}
}

func (s *MaintenanceService) allIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.eachDocument(ctx, func(doc domain.Document) {
		ids = append(ids, doc.ID)
	})
	return ids, err
}

// eachDocument pages through every stored document, oldest first.
func (s *MaintenanceService) eachDocument(ctx context.Context, fn func(domain.Document)) error {
	for page := 1; ; page++ {
		recs, total, err := s.docs.ListDocuments(ctx, domain.DocumentFilter{
			SortBy: "created", SortOrder: sortAscending, Page: page, Limit: listPageSize,
		})
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}
		for _, rec := range recs {
			fn(rec.Document)
		}
		if len(recs) == 0 || page*listPageSize >= total {
			return nil
		}
	}
}
