package flat

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

func TestEmbed_Normalised(t *testing.T) {
	v := Embed("quarterly revenue report revenue", 384)

	require.Len(t, v, 384)
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbed_EmptyIsZero(t *testing.T) {
	v := Embed("   ", 16)
	require.Len(t, v, 16)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestEmbed_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Embed("Hello World", 64), Embed("hello world", 64))
}

func TestBucket_RollingHash(t *testing.T) {
	// "ab" = 97*31 + 98 = 3105
	assert.Equal(t, 3105%384, bucket("ab", 384))
	// CJK characters hash by UTF-16 code unit: 0x4E2D*31 + 0x6587
	assert.Equal(t, (0x4E2D*31+0x6587)%384, bucket("中文", 384))
}

func TestBucket_NegativeHash(t *testing.T) {
	b := bucket("a very long token that will overflow the rolling hash", 384)
	assert.GreaterOrEqual(t, b, 0)
	assert.Less(t, b, 384)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 1}))
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir(), DefaultDimension)
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, "doc-1", "annual budget review for engineering", map[string]string{"title": "Budget"}))
	require.NoError(t, s.Add(ctx, "doc-2", "team offsite travel logistics", nil))

	matches, err := s.Search(ctx, "annual budget review for engineering", 5, 0.1)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "doc-1", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-5)
	assert.Equal(t, "Budget", matches[0].Metadata["title"])

	require.NoError(t, s.Remove(ctx, "doc-1"))
	matches, err = s.Search(ctx, "annual budget review for engineering", 5, 0.1)
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, "doc-1", m.ID)
	}
	assert.False(t, s.Has("doc-1"))
	assert.True(t, s.Has("doc-2"))
}

func TestStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir(), 64)
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, "a", "first text", nil))
	require.NoError(t, s.Add(ctx, "a", "second text", nil))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)
	assert.Equal(t, 64, stats.Dimension)
	assert.Positive(t, stats.StorageBytes)
}

func TestStore_ThresholdAndLimit(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir(), DefaultDimension)
	require.NoError(t, err)

	require.NoError(t, s.AddBatch(ctx, []driven.VectorItem{
		{ID: "a", Text: "alpha beta"},
		{ID: "b", Text: "alpha gamma"},
		{ID: "c", Text: "unrelated words entirely"},
	}))

	matches, err := s.Search(ctx, "alpha", 1, 0.1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	none, err := s.Search(ctx, "alpha", 10, 1.1)
	require.NoError(t, err)
	assert.Empty(t, none)

	zero, err := s.Search(ctx, "alpha", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, zero)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New(dir, 32)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "x", "persist me", map[string]string{"fileType": "pdf"}))

	reopened, err := New(dir, 32)
	require.NoError(t, err)
	assert.True(t, reopened.Has("x"))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	var b blob
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, 32, b.Dimension)
	require.Len(t, b.Vectors, 1)
	assert.Equal(t, "pdf", b.Vectors[0].Metadata["fileType"])
}

func TestStore_DimensionMismatchResets(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New(dir, 32)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "x", "text", nil))

	other, err := New(dir, 64)
	require.NoError(t, err)
	assert.False(t, other.Has("x"))
}

func TestStore_CorruptBlobStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o600))

	s, err := New(dir, 32)
	require.NoError(t, err)
	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVectors)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir(), 32)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "x", "text", nil))

	require.NoError(t, s.Clear(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVectors)
}

func TestStore_EmptyID(t *testing.T) {
	s, err := New(t.TempDir(), 32)
	require.NoError(t, err)

	err = s.Add(context.Background(), "", "text", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_BatchWithEmptyIDStoresNothing(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir(), 32)
	require.NoError(t, err)

	err = s.AddBatch(ctx, []driven.VectorItem{{ID: "a", Text: "alpha"}, {ID: "", Text: "beta"}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.False(t, s.Has("a"))
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_FailedSaveLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "vectors")
	s, err := New(dir, 32)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "keep", "kept text", nil))

	require.NoError(t, os.RemoveAll(dir))

	err = s.AddBatch(ctx, []driven.VectorItem{{ID: "new", Text: "fresh"}, {ID: "keep", Text: "changed"}})
	require.Error(t, err)
	assert.False(t, s.Has("new"))

	require.Error(t, s.Remove(ctx, "keep"))
	assert.True(t, s.Has("keep"))

	require.Error(t, s.Clear(ctx))
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)

	matches, err := s.Search(ctx, "kept text", 1, 0.9)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "keep", matches[0].ID)
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New("", 32)
	assert.Error(t, err)
}
