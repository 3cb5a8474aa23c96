package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server   *Server
	search   *mockSearchService
	docs     *mockDocumentService
	settings *mockSettingsService
	maint    *mockMaintenanceService
	scan     *mockScanOrchestrator
}

func newFixture(t *testing.T, recs ...*domain.DocumentRecord) *fixture {
	t.Helper()
	f := &fixture{
		search:   &mockSearchService{},
		docs:     newMockDocuments(recs...),
		settings: &mockSettingsService{},
		maint:    &mockMaintenanceService{},
		scan:     &mockScanOrchestrator{started: make(chan string, 1)},
	}
	server, err := NewServer(&Ports{
		Scan:        f.scan,
		Search:      f.search,
		Document:    f.docs,
		Settings:    f.settings,
		Maintenance: f.maint,
	})
	require.NoError(t, err)
	f.server = server
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func record(id, path string) *domain.DocumentRecord {
	return &domain.DocumentRecord{Document: domain.Document{ID: id, Title: "Doc " + id, FilePath: path}}
}

func TestNewServer_RequiresSearch(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestSearch_ParsesParameters(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet,
		"/api/search?q=budget&mode=fulltext&category=report,tech&category=policy&type=pdf&page=2&limit=5&dateFrom=2024-01-01", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	q := f.search.last
	assert.Equal(t, "budget", q.Query)
	assert.Equal(t, domain.SearchModeFullText, q.Mode)
	assert.Equal(t, []string{"report", "tech", "policy"}, q.Categories)
	assert.Equal(t, []string{"pdf"}, q.FileTypes)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.Limit)
	require.NotNil(t, q.DateFrom)
	assert.Equal(t, 2024, q.DateFrom.Year())
	assert.Nil(t, q.DateTo)
}

func TestSearch_InvalidDate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/search?q=x&dateTo=yesterday", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_ErrorMapping(t *testing.T) {
	f := newFixture(t)
	f.search.err = domain.ErrSearchUnavailable

	rec := f.do(t, http.MethodGet, "/api/search?q=x", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "search engine unavailable")
}

func TestSuggestions(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/search/suggestions?q=ro", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ro plan")

	rec = f.do(t, http.MethodGet, "/api/search/suggestions?q=r", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())
}

func TestDocuments_ListGetDelete(t *testing.T) {
	f := newFixture(t, record("a", "/tmp/a.txt"))

	rec := f.do(t, http.MethodGet, "/api/documents?type=pdf&category=tech&page=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.FileTypePDF, f.docs.filter.FileType)
	assert.Equal(t, "tech", f.docs.filter.CategoryID)
	assert.Equal(t, 3, f.docs.filter.Page)
	assert.Equal(t, defaultPageSize, f.docs.filter.Limit)
	assert.EqualValues(t, 1, decode(t, rec)["pagination"].(map[string]any)["total"])

	rec = f.do(t, http.MethodGet, "/api/documents/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Doc a")

	rec = f.do(t, http.MethodGet, "/api/documents/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/documents/a", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"a"}, f.docs.deleted)
}

func TestDocuments_Ask(t *testing.T) {
	f := newFixture(t, record("a", "/tmp/a.txt"))

	rec := f.do(t, http.MethodPost, "/api/documents/a/ask", map[string]string{"question": "why?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "answer to why?", decode(t, rec)["answer"])

	rec = f.do(t, http.MethodPost, "/api/documents/a/ask", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocuments_Download(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
	f := newFixture(t, record("a", path), record("gone", filepath.Join(dir, "gone.txt")))

	rec := f.do(t, http.MethodGet, "/api/documents/a/download", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "notes.txt")

	rec = f.do(t, http.MethodGet, "/api/documents/gone/download", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocuments_Reveal(t *testing.T) {
	f := newFixture(t, record("a", "/tmp/a.txt"))

	rec := f.do(t, http.MethodPost, "/api/documents/a/reveal", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a"}, f.docs.revealed)
}

func TestCategoriesAndStats(t *testing.T) {
	f := newFixture(t, record("a", "/tmp/a.txt"))

	rec := f.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"documentCount":1`)

	rec = f.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["documents"])
}

func TestScan_StartsInBackground(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	rec := f.do(t, http.MethodPost, "/api/scan", map[string]any{"path": dir})

	require.Equal(t, http.StatusAccepted, rec.Code)
	select {
	case root := <-f.scan.started:
		assert.Equal(t, dir, root)
	case <-time.After(2 * time.Second):
		t.Fatal("scan was not started")
	}
}

func TestScan_RejectsWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.scan.active = &domain.ScanSession{Status: domain.ScanRunning}

	rec := f.do(t, http.MethodPost, "/api/scan", map[string]any{"path": t.TempDir()})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScan_InvalidRoot(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/scan", map[string]any{"path": filepath.Join(t.TempDir(), "missing")})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScan_StatusAndHistory(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/scan/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["active"])

	f.scan.active = &domain.ScanSession{ID: "s1", Status: domain.ScanRunning}
	rec = f.do(t, http.MethodGet, "/api/scan/status", nil)
	assert.Equal(t, true, decode(t, rec)["active"])

	rec = f.do(t, http.MethodGet, "/api/scan/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":[]}`, rec.Body.String())
}

func TestSettings(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sk-12345***")

	rec = f.do(t, http.MethodPut, "/api/settings", map[string]string{
		domain.SettingAIMode:          "private",
		domain.SettingDashScopeAPIKey: "",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":["ai.mode"]}`, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/api/settings", map[string]string{"bogus": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettings_Test(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/settings/test", map[string]string{"target": "llm"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ok"])

	f.settings.testErr = errors.New("connection refused")
	rec = f.do(t, http.MethodPost, "/api/settings/test", map[string]string{"target": "meilisearch"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, false, decode(t, rec)["ok"])
}

func TestAdmin_Reindex(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/admin/reindex", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.maint.pruned)

	rec = f.do(t, http.MethodPost, "/api/admin/reindex", map[string]bool{"prune": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.maint.pruned)
	var report driving.ReindexReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Pruned)
	assert.Equal(t, 3, report.Indexed)
}

func TestAdmin_Clear(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/admin/clear", map[string]string{"target": "history"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []driving.ClearTarget{driving.ClearHistory}, f.docs.cleared)

	rec = f.do(t, http.MethodPost, "/api/admin/clear", map[string]string{"target": "everything"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnwiredPortsAnswer503(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	for _, target := range []string{"/api/documents", "/api/categories", "/api/stats", "/api/settings", "/api/scan/status"} {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrScanInProgress))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrLLMUnavailable))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(domain.ErrTimeout))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
