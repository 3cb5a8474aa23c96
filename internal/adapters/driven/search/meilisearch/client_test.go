package meilisearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   []byte
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Index, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: body})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(Config{Host: srv.URL, APIKey: "master"}), &calls
}

func accepted(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"taskUid":1,"status":"enqueued"}`))
}

func TestNew_Defaults(t *testing.T) {
	x := New(Config{})
	assert.Equal(t, DefaultHost, x.host)
	assert.Equal(t, DefaultIndexName, x.indexID)
}

func TestConfigure(t *testing.T) {
	x, calls := newTestIndex(t, accepted)

	require.NoError(t, x.Configure(context.Background()))
	require.Len(t, *calls, 2)

	create := (*calls)[0]
	assert.Equal(t, http.MethodPost, create.method)
	assert.Equal(t, "/indexes", create.path)
	assert.Equal(t, "Bearer master", create.auth)
	assert.JSONEq(t, `{"uid":"documents","primaryKey":"id"}`, string(create.body))

	settings := (*calls)[1]
	assert.Equal(t, http.MethodPatch, settings.method)
	assert.Equal(t, "/indexes/documents/settings", settings.path)
	var s indexSettings
	require.NoError(t, json.Unmarshal(settings.body, &s))
	assert.Equal(t, SearchableAttributes, s.SearchableAttributes)
	assert.Equal(t, FilterableAttributes, s.FilterableAttributes)
	assert.Equal(t, SortableAttributes, s.SortableAttributes)
	assert.Equal(t, 10000, s.Pagination.MaxTotalHits)
	assert.Equal(t, 4, s.TypoTolerance.MinWordSizeForTypos.OneTypo)
}

func TestConfigure_ExistingIndex(t *testing.T) {
	x, calls := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/indexes" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"exists","code":"index_already_exists"}`))
			return
		}
		accepted(w, r)
	})

	require.NoError(t, x.Configure(context.Background()))
	assert.Len(t, *calls, 2)
}

func TestConfigure_SettingsFailure(t *testing.T) {
	x, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"bad attribute","code":"invalid_settings"}`))
			return
		}
		accepted(w, r)
	})

	err := x.Configure(context.Background())
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "invalid_settings", se.Code)
}

func TestUpsert(t *testing.T) {
	x, calls := newTestIndex(t, accepted)

	require.NoError(t, x.Upsert(context.Background()))
	assert.Empty(t, *calls)

	doc := driven.IndexDocument{ID: "d1", Title: "Guide", Categories: []string{"tech"}, CreatedAt: 1700000000000}
	require.NoError(t, x.Upsert(context.Background(), doc))
	require.Len(t, *calls, 1)
	assert.Equal(t, "/indexes/documents/documents", (*calls)[0].path)

	var sent []driven.IndexDocument
	require.NoError(t, json.Unmarshal((*calls)[0].body, &sent))
	assert.Equal(t, []driven.IndexDocument{doc}, sent)
}

func TestDelete(t *testing.T) {
	x, calls := newTestIndex(t, accepted)

	require.NoError(t, x.Delete(context.Background(), "d1"))
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/indexes/documents/documents/d1", (*calls)[0].path)
}

func TestSearch(t *testing.T) {
	x, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"hits": [
				{"id":"d1","title":"Deploy guide","fileType":"pdf","_rankingScore":0.9,
				 "_formatted":{"title":"<mark>Deploy</mark> guide","fileSize":"12"}},
				{"id":"d2","title":"Other","fileType":"docx"}
			],
			"estimatedTotalHits": 2,
			"processingTimeMs": 7
		}`))
	})

	res, err := x.Search(context.Background(), driven.IndexQuery{
		Query:  `"deploy"`,
		Filter: `fileType = "pdf"`,
		Sort:   []string{"modifiedAt:desc"},
		Offset: 20,
	})
	require.NoError(t, err)

	var sent searchRequest
	require.NoError(t, json.Unmarshal((*calls)[0].body, &sent))
	assert.Equal(t, "/indexes/documents/search", (*calls)[0].path)
	assert.Equal(t, `"deploy"`, sent.Q)
	assert.Equal(t, `fileType = "pdf"`, sent.Filter)
	assert.Equal(t, DefaultLimit, sent.Limit)
	assert.Equal(t, 20, sent.Offset)
	assert.Equal(t, HighlightPreTag, sent.HighlightPreTag)
	assert.True(t, sent.ShowRankingScore)

	require.Len(t, res.Hits, 2)
	assert.Equal(t, 2, res.EstimatedTotal)
	assert.Equal(t, 7*time.Millisecond, res.ProcessingTime)
	assert.Equal(t, "d1", res.Hits[0].Document.ID)
	assert.InDelta(t, 0.9, res.Hits[0].RankingScore, 1e-9)
	assert.Equal(t, "<mark>Deploy</mark> guide", res.Hits[0].Formatted["title"])
	assert.Zero(t, res.Hits[1].RankingScore)
}

func TestSearch_ServerError(t *testing.T) {
	x, _ := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := x.Search(context.Background(), driven.IndexQuery{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHealth(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		x, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"available"}`))
		})
		require.NoError(t, x.Health(context.Background()))
		assert.Equal(t, "/health", (*calls)[0].path)
	})

	t.Run("unreachable", func(t *testing.T) {
		x := New(Config{Host: "http://127.0.0.1:1", Timeout: time.Second})
		assert.ErrorIs(t, x.Health(context.Background()), domain.ErrSearchUnavailable)
	})

	t.Run("degraded status", func(t *testing.T) {
		x, _ := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"starting"}`))
		})
		assert.ErrorIs(t, x.Health(context.Background()), domain.ErrSearchUnavailable)
	})
}

func TestReset(t *testing.T) {
	x, calls := newTestIndex(t, accepted)
	require.NoError(t, x.Reset(context.Background()))
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/indexes/documents/documents", (*calls)[0].path)
}
