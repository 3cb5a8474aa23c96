package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsift/internal/core/domain"
)

func seedDocuments(t *testing.T, store *memory.Store, dir string, n int) []string {
	t.Helper()
	ctx := context.Background()
	paths := make([]string, n)
	for i := 0; i < n; i++ {
		paths[i] = writeFile(t, dir, fmt.Sprintf("doc%03d.txt", i), "content")
		require.NoError(t, store.DocumentStore().SaveDocument(ctx, &domain.DocumentRecord{
			Document: domain.Document{
				ID: fmt.Sprintf("d%03d", i), Title: fmt.Sprintf("Doc %d", i), FilePath: paths[i],
				FileType: domain.FileTypeText, Content: fmt.Sprintf("body %d", i),
				CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
			},
		}))
	}
	return paths
}

func TestMaintenanceService_Reindex(t *testing.T) {
	store := memory.NewStore()
	seedDocuments(t, store, t.TempDir(), 150)
	index := newMockIndex()
	vectors := newMockVectors()

	svc := NewMaintenanceService(store.DocumentStore(), index, vectors, 4)
	report, err := svc.Reindex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 150, report.Documents)
	assert.Equal(t, 150, report.Indexed)
	assert.Equal(t, 150, report.Vectors)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, index.configured)
	assert.Equal(t, 150, index.count())
	assert.Equal(t, "Doc 7 body 7", vectors.added["d007"])
	assert.Equal(t, "body 7", index.upserted["d007"].Content)
}

func TestMaintenanceService_ReindexUnhealthyIndex(t *testing.T) {
	store := memory.NewStore()
	seedDocuments(t, store, t.TempDir(), 3)
	index := newMockIndex()
	index.healthErr = domain.ErrSearchUnavailable
	vectors := newMockVectors()

	report, err := NewMaintenanceService(store.DocumentStore(), index, vectors, 2).Reindex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Indexed)
	assert.Equal(t, 3, report.Vectors)
	require.Len(t, report.Errors, 1)
	assert.Zero(t, index.count())
}

func TestMaintenanceService_ReindexRecordsFailures(t *testing.T) {
	store := memory.NewStore()
	seedDocuments(t, store, t.TempDir(), 2)
	index := newMockIndex()
	index.upsertErr = errors.New("payload too large")

	report, err := NewMaintenanceService(store.DocumentStore(), index, nil, 0).Reindex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Indexed)
	assert.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "payload too large")
}

func TestMaintenanceService_ReindexWithoutProjections(t *testing.T) {
	_, err := NewMaintenanceService(memory.NewDocumentStore(), nil, nil, 1).Reindex(context.Background())
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}

func TestMaintenanceService_Prune(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	paths := seedDocuments(t, store, dir, 4)
	require.NoError(t, os.Remove(paths[1]))
	require.NoError(t, os.Remove(paths[3]))
	index := newMockIndex()
	vectors := newMockVectors()

	report, err := NewMaintenanceService(store.DocumentStore(), index, vectors, 1).Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pruned)
	assert.ElementsMatch(t, []string{"d001", "d003"}, index.deleted)
	assert.ElementsMatch(t, []string{"d001", "d003"}, vectors.removed)

	_, total, err := store.DocumentStore().ListDocuments(context.Background(), domain.DocumentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestMaintenanceService_PrunePaths(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	paths := seedDocuments(t, store, dir, 3)
	require.NoError(t, os.Remove(paths[0]))

	svc := NewMaintenanceService(store.DocumentStore(), nil, nil, 1)
	n, err := svc.PrunePaths(context.Background(), []string{paths[0], paths[1], filepath.Join(dir, "unknown.txt")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.DocumentStore().GetDocument(context.Background(), "d000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.DocumentStore().GetDocument(context.Background(), "d001")
	assert.NoError(t, err)
}

func TestMaintenanceService_PrunePathsRemovedDirectory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	seedDocuments(t, store, sub, 3)

	sibling := writeFile(t, root, filepath.Join("subway", "notes.txt"), "content")
	require.NoError(t, store.DocumentStore().SaveDocument(ctx, &domain.DocumentRecord{
		Document: domain.Document{ID: "sibling", Title: "Notes", FilePath: sibling, FileType: domain.FileTypeText},
	}))
	require.NoError(t, os.RemoveAll(sub))

	index := newMockIndex()
	vectors := newMockVectors()
	svc := NewMaintenanceService(store.DocumentStore(), index, vectors, 1)

	n, err := svc.PrunePaths(ctx, []string{sub})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	fps, err := store.DocumentStore().Fingerprints(ctx)
	require.NoError(t, err)
	assert.Len(t, fps, 1)
	assert.Contains(t, fps, sibling)
	assert.ElementsMatch(t, []string{"d000", "d001", "d002"}, index.deleted)
	assert.ElementsMatch(t, []string{"d000", "d001", "d002"}, vectors.removed)
}
