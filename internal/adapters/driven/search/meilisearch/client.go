// Package meilisearch implements driven.FullTextIndex against a Meilisearch
// server over its HTTP API.
package meilisearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.FullTextIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultHost      = "http://localhost:7700"
	DefaultIndexName = "documents"
	DefaultTimeout   = 10 * time.Second
	DefaultLimit     = 20
	HighlightPreTag  = "<mark>"
	HighlightPostTag = "</mark>"
	cropLength       = 200
	maxTotalHits     = 10000
)

// Settings applied by Configure.
var (
	SearchableAttributes = []string{"title", "content", "summary", "keywords", "categoryNames"}
	FilterableAttributes = []string{"fileType", "categories", "createdAt", "modifiedAt"}
	SortableAttributes   = []string{"createdAt", "modifiedAt", "title", "fileSize"}
	DisplayedAttributes  = []string{
		"id", "title", "summary", "fileType", "filePath", "categories",
		"categoryNames", "keywords", "createdAt", "modifiedAt", "fileSize",
	}
	highlightAttributes = []string{"title", "content", "summary"}
)

// Config holds the server location.
type Config struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// Index is a Meilisearch-backed full-text index.
type Index struct {
	client  *http.Client
	host    string
	apiKey  string
	indexID string
}

// New creates an index client. No request is made until first use.
func New(cfg Config) *Index {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndexName
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		client:  &http.Client{Timeout: cfg.Timeout},
		host:    strings.TrimRight(cfg.Host, "/"),
		apiKey:  cfg.APIKey,
		indexID: cfg.IndexName,
	}
}

// apiError is the error body returned by the server.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type indexSettings struct {
	SearchableAttributes []string `json:"searchableAttributes"`
	FilterableAttributes []string `json:"filterableAttributes"`
	SortableAttributes   []string `json:"sortableAttributes"`
	DisplayedAttributes  []string `json:"displayedAttributes"`
	Pagination           struct {
		MaxTotalHits int `json:"maxTotalHits"`
	} `json:"pagination"`
	TypoTolerance struct {
		Enabled             bool `json:"enabled"`
		MinWordSizeForTypos struct {
			OneTypo  int `json:"oneTypo"`
			TwoTypos int `json:"twoTypos"`
		} `json:"minWordSizeForTypos"`
	} `json:"typoTolerance"`
}

type searchRequest struct {
	Q                     string   `json:"q"`
	Filter                string   `json:"filter,omitempty"`
	Sort                  []string `json:"sort,omitempty"`
	Limit                 int      `json:"limit"`
	Offset                int      `json:"offset"`
	AttributesToHighlight []string `json:"attributesToHighlight"`
	HighlightPreTag       string   `json:"highlightPreTag"`
	HighlightPostTag      string   `json:"highlightPostTag"`
	AttributesToCrop      []string `json:"attributesToCrop"`
	CropLength            int      `json:"cropLength"`
	ShowRankingScore      bool     `json:"showRankingScore"`
}

type searchHit struct {
	driven.IndexDocument
	Formatted    map[string]any `json:"_formatted"`
	RankingScore float64        `json:"_rankingScore"`
}

type searchResponse struct {
	Hits               []searchHit `json:"hits"`
	EstimatedTotalHits int         `json:"estimatedTotalHits"`
	TotalHits          int         `json:"totalHits"`
	ProcessingTimeMs   int64       `json:"processingTimeMs"`
}

// Configure creates the index if missing and applies attribute settings.
func (x *Index) Configure(ctx context.Context) error {
	err := x.do(ctx, http.MethodPost, "/indexes", map[string]string{"uid": x.indexID, "primaryKey": "id"}, nil)
	if err != nil && !isCode(err, "index_already_exists") {
		return fmt.Errorf("creating index: %w", err)
	}

	var s indexSettings
	s.SearchableAttributes = SearchableAttributes
	s.FilterableAttributes = FilterableAttributes
	s.SortableAttributes = SortableAttributes
	s.DisplayedAttributes = DisplayedAttributes
	s.Pagination.MaxTotalHits = maxTotalHits
	s.TypoTolerance.Enabled = true
	s.TypoTolerance.MinWordSizeForTypos.OneTypo = 4
	s.TypoTolerance.MinWordSizeForTypos.TwoTypos = 8

	if err := x.do(ctx, http.MethodPatch, x.indexPath("/settings"), s, nil); err != nil {
		return fmt.Errorf("updating index settings: %w", err)
	}
	return nil
}

// Upsert adds or replaces documents by id.
func (x *Index) Upsert(ctx context.Context, docs ...driven.IndexDocument) error {
	if len(docs) == 0 {
		return nil
	}
	if err := x.do(ctx, http.MethodPost, x.indexPath("/documents"), docs, nil); err != nil {
		return fmt.Errorf("upserting documents: %w", err)
	}
	return nil
}

// Delete removes a document by id. Deleting a missing id is not an error.
func (x *Index) Delete(ctx context.Context, id string) error {
	if err := x.do(ctx, http.MethodDelete, x.indexPath("/documents/"+url.PathEscape(id)), nil, nil); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Search runs a filtered, sorted, highlighted query.
func (x *Index) Search(ctx context.Context, req driven.IndexQuery) (*driven.IndexResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	body := searchRequest{
		Q:                     req.Query,
		Filter:                req.Filter,
		Sort:                  req.Sort,
		Limit:                 limit,
		Offset:                req.Offset,
		AttributesToHighlight: highlightAttributes,
		HighlightPreTag:       HighlightPreTag,
		HighlightPostTag:      HighlightPostTag,
		AttributesToCrop:      []string{"content"},
		CropLength:            cropLength,
		ShowRankingScore:      true,
	}

	var resp searchResponse
	if err := x.do(ctx, http.MethodPost, x.indexPath("/search"), body, &resp); err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	out := &driven.IndexResult{
		Hits:           make([]driven.IndexHit, 0, len(resp.Hits)),
		EstimatedTotal: resp.EstimatedTotalHits,
		ProcessingTime: time.Duration(resp.ProcessingTimeMs) * time.Millisecond,
	}
	if out.EstimatedTotal == 0 {
		out.EstimatedTotal = resp.TotalHits
	}
	for _, h := range resp.Hits {
		hit := driven.IndexHit{
			Document:     h.IndexDocument,
			Formatted:    make(map[string]string),
			RankingScore: h.RankingScore,
		}
		for k, v := range h.Formatted {
			if s, ok := v.(string); ok {
				hit.Formatted[k] = s
			}
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// Health reports whether the server is reachable and available.
func (x *Index) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := x.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	if resp.Status != "available" {
		return fmt.Errorf("%w: status %q", domain.ErrSearchUnavailable, resp.Status)
	}
	return nil
}

// Reset drops every document from the index.
func (x *Index) Reset(ctx context.Context) error {
	if err := x.do(ctx, http.MethodDelete, x.indexPath("/documents"), nil, nil); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}
	return nil
}

func (x *Index) indexPath(suffix string) string {
	return "/indexes/" + url.PathEscape(x.indexID) + suffix
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (x *Index) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.host+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return &StatusError{Status: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
		}
		return &StatusError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("meilisearch error (status %d, %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("meilisearch error (status %d): %s", e.Status, e.Message)
}

func isCode(err error, code string) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
