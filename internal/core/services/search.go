package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Search defaults.
const (
	DefaultSearchLimit    = 20
	MaxSearchLimit        = 100
	DefaultSuggestLimit   = 10
	MaxSuggestLimit       = 50
	MinSuggestLength      = 2
	FullTextWeight        = 0.7
	SemanticWeight        = 0.3
	SemanticThreshold     = 0.1
	maxHybridFetch        = 1000
	hybridFetchFactor     = 2
	snippetLength         = 200
	highlightOpen         = "<mark>"
	highlightClose        = "</mark>"
	sortAscending         = "asc"
	sortDescending        = "desc"
	indexFieldModifiedAt  = "modifiedAt"
	indexFieldCategories  = "categories"
	indexFieldFileType    = "fileType"
	indexFieldTitle       = "title"
	filterClauseSeparator = " AND "
)

var highlightFields = []string{"title", "content", "summary"}

var highlightPattern = regexp.MustCompile(regexp.QuoteMeta(highlightOpen) + `(.*?)` + regexp.QuoteMeta(highlightClose))

// fileTypeAliases maps loose user-facing names to canonical file types.
var fileTypeAliases = map[string]domain.FileType{
	"pdf":         domain.FileTypePDF,
	"word":        domain.FileTypeDOCX,
	"doc":         domain.FileTypeDOCX,
	"docx":        domain.FileTypeDOCX,
	"excel":       domain.FileTypeXLSX,
	"xls":         domain.FileTypeXLSX,
	"xlsx":        domain.FileTypeXLSX,
	"spreadsheet": domain.FileTypeXLSX,
	"表格":          domain.FileTypeXLSX,
	"ppt":         domain.FileTypePPTX,
	"pptx":        domain.FileTypePPTX,
	"powerpoint":  domain.FileTypePPTX,
	"slides":      domain.FileTypePPTX,
	"演示":          domain.FileTypePPTX,
	"txt":         domain.FileTypeText,
	"text":        domain.FileTypeText,
	"md":          domain.FileTypeText,
	"markdown":    domain.FileTypeText,
	"文本":          domain.FileTypeText,
	"image":       domain.FileTypeImage,
	"images":      domain.FileTypeImage,
	"img":         domain.FileTypeImage,
	"picture":     domain.FileTypeImage,
	"photo":       domain.FileTypeImage,
	"png":         domain.FileTypeImage,
	"jpg":         domain.FileTypeImage,
	"jpeg":        domain.FileTypeImage,
	"gif":         domain.FileTypeImage,
	"webp":        domain.FileTypeImage,
	"图片":          domain.FileTypeImage,
	"ofd":         domain.FileTypeFixedLayout,
	"invoice":     domain.FileTypeFixedLayout,
	"发票":          domain.FileTypeFixedLayout,
}

// CategoryResolver maps a category id, slug or display name to its id.
type CategoryResolver interface {
	Resolve(value string) (string, bool)
}

// SearchService blends full-text and semantic retrieval. The index and
// vector store are both optional; search degrades to whichever is left.
type SearchService struct {
	docs       driven.DocumentStore
	index      driven.FullTextIndex
	vectors    driven.VectorStore
	categories CategoryResolver
}

// NewSearchService creates a new search service.
// index and vectors may be nil.
func NewSearchService(
	docs driven.DocumentStore,
	index driven.FullTextIndex,
	vectors driven.VectorStore,
	categories CategoryResolver,
) *SearchService {
	return &SearchService{
		docs:       docs,
		index:      index,
		vectors:    vectors,
		categories: categories,
	}
}

// filters is a query's filter set in canonical vocabulary.
type filters struct {
	categories []string
	fileTypes  []domain.FileType
	from, to   *time.Time
}

// scored is a hit from either leg before paging.
type scored struct {
	result   domain.SearchResult
	fullText float64
	semantic float64
}

// Search executes a query in the requested mode.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	start := time.Now()
	logger.Section("Search Execution")

	q.Query = strings.TrimSpace(q.Query)
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit > MaxSearchLimit {
		q.Limit = MaxSearchLimit
	}
	if q.Mode == "" {
		q.Mode = domain.SearchModeHybrid
	}
	if !q.Mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, q.Mode)
	}
	f := s.translateFilters(q)
	logger.Debug("Query: %q, mode: %s, page: %d, limit: %d", q.Query, q.Mode, q.Page, q.Limit)

	resp := &domain.SearchResponse{Query: q.Query, Page: q.Page, Limit: q.Limit, Mode: q.Mode}

	var (
		hits  []scored
		total int
		err   error
	)
	mode := q.Mode
	if mode != domain.SearchModeSemantic {
		hits, total, err = s.fullTextLeg(ctx, q, f, mode == domain.SearchModeHybrid)
		if err != nil {
			if !s.degradable(ctx, err) {
				return nil, fmt.Errorf("search: %w", err)
			}
			logger.Warn("Full-text index unavailable, falling back to semantic search: %v", err)
			mode = domain.SearchModeSemantic
			resp.Degraded = true
		}
	}

	switch mode {
	case domain.SearchModeSemantic:
		hits, err = s.semanticLeg(ctx, q.Query, f, q.Page*q.Limit*hybridFetchFactor)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		sortHits(hits, q, func(h scored) float64 { return h.semantic })
		total = len(hits)
		hits = page(hits, q.Page, q.Limit)
	case domain.SearchModeHybrid:
		hits = s.blend(ctx, q, hits)
		hits = page(hits, q.Page, q.Limit)
	}

	// Hybrid results are ranked locally from one window of index hits.
	pageable := total
	if mode == domain.SearchModeHybrid {
		pageable = min(total, maxHybridFetch)
	}

	resp.Mode = mode
	resp.Total = total
	resp.Results = make([]domain.SearchResult, len(hits))
	for i, h := range hits {
		resp.Results[i] = h.result
	}
	if q.Limit > 0 {
		resp.TotalPages = (pageable + q.Limit - 1) / q.Limit
	}
	resp.ProcessingTime = time.Since(start)
	logger.Info("Search %q (%s): %d of %d results", q.Query, mode, len(resp.Results), total)
	return resp, nil
}

// Suggest returns titles and keywords containing the fragment.
func (s *SearchService) Suggest(ctx context.Context, fragment string, limit int) ([]domain.Suggestion, error) {
	fragment = strings.TrimSpace(fragment)
	if utf8.RuneCountInString(fragment) < MinSuggestLength {
		return []domain.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}
	out, err := s.docs.SearchTitles(ctx, fragment, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return out, nil
}

// degradable reports whether a full-text failure should fall back to
// semantic search. A failure against a healthy index is a real error.
func (s *SearchService) degradable(ctx context.Context, err error) bool {
	if s.index == nil || errors.Is(err, domain.ErrSearchUnavailable) {
		return s.vectors != nil
	}
	if herr := s.index.Health(ctx); herr != nil {
		return s.vectors != nil
	}
	return false
}

// fullTextLeg queries the index. In hybrid mode it fetches an oversized
// first page so the blend can reorder before paging.
func (s *SearchService) fullTextLeg(
	ctx context.Context,
	q domain.SearchQuery,
	f filters,
	hybrid bool,
) ([]scored, int, error) {
	if s.index == nil {
		return nil, 0, domain.ErrSearchUnavailable
	}

	req := driven.IndexQuery{
		Query:  phraseQuery(q.Query),
		Filter: f.expression(),
		Sort:   indexSort(q.SortBy, q.SortOrder),
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
	if hybrid {
		req.Offset = 0
		req.Limit = min(q.Page*q.Limit*hybridFetchFactor, maxHybridFetch)
	}

	res, err := s.index.Search(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	logger.Debug("Full-text: %d hits (estimated %d) in %s", len(res.Hits), res.EstimatedTotal, res.ProcessingTime)

	n := len(res.Hits)
	hits := make([]scored, n)
	for i, hit := range res.Hits {
		score := hit.RankingScore
		if score <= 0 {
			score = 1 - float64(i)/float64(n)
		}
		r := fromIndexDocument(hit.Document)
		r.Highlights = extractHighlights(hit.Formatted)
		if snippet, ok := hit.Formatted["content"]; ok && snippet != "" {
			r.Snippet = snippet
		}
		r.FullTextScore = score
		r.Score = score
		hits[i] = scored{result: r, fullText: score}
	}
	return hits, res.EstimatedTotal, nil
}

// semanticLeg queries the vector store and hydrates matches from the
// document store, applying filters after retrieval.
func (s *SearchService) semanticLeg(ctx context.Context, query string, f filters, limit int) ([]scored, error) {
	if s.vectors == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if query == "" {
		return nil, nil
	}

	matches, err := s.vectors.Search(ctx, query, limit, SemanticThreshold)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	logger.Debug("Semantic: %d matches", len(matches))

	hits := make([]scored, 0, len(matches))
	for _, m := range matches {
		rec, err := s.docs.GetDocument(ctx, m.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Skipping stale vector %s", m.ID)
				continue
			}
			return nil, fmt.Errorf("loading document %s: %w", m.ID, err)
		}
		if !f.match(rec) {
			continue
		}
		r := fromRecord(rec)
		r.SemanticScore = m.Similarity
		r.Score = m.Similarity
		hits = append(hits, scored{result: r, semantic: m.Similarity})
	}
	return hits, nil
}

// blend adds semantic similarity to full-text hits. Documents found only
// by the semantic leg are not added, since the full-text leg honours filters.
func (s *SearchService) blend(ctx context.Context, q domain.SearchQuery, hits []scored) []scored {
	if s.vectors != nil && q.Query != "" && len(hits) > 0 {
		matches, err := s.vectors.Search(ctx, q.Query, len(hits)*hybridFetchFactor, SemanticThreshold)
		if err != nil {
			logger.Warn("Semantic leg failed, using full-text scores only: %v", err)
		} else {
			sims := make(map[string]float64, len(matches))
			for _, m := range matches {
				sims[m.ID] = m.Similarity
			}
			for i := range hits {
				hits[i].semantic = sims[hits[i].result.ID]
			}
		}
	}

	for i := range hits {
		h := &hits[i]
		h.result.SemanticScore = h.semantic
		h.result.Score = BlendScore(h.fullText, h.semantic)
	}
	sortHits(hits, q, func(h scored) float64 { return h.result.Score })
	return hits
}

// BlendScore combines a full-text and a semantic score.
func BlendScore(fullText, semantic float64) float64 {
	return FullTextWeight*fullText + SemanticWeight*semantic
}

// sortHits orders by score for relevance queries. Explicit date or title
// sorts keep the order in which hits arrived, re-sorted when they came
// from the semantic leg.
func sortHits(hits []scored, q domain.SearchQuery, score func(scored) float64) {
	switch q.SortBy {
	case domain.SortDate:
		sort.SliceStable(hits, func(i, j int) bool {
			a, b := hits[i].result.ModifiedAt, hits[j].result.ModifiedAt
			if q.SortOrder == sortAscending {
				return a.Before(b)
			}
			return a.After(b)
		})
	case domain.SortTitle:
		sort.SliceStable(hits, func(i, j int) bool {
			a, b := strings.ToLower(hits[i].result.Title), strings.ToLower(hits[j].result.Title)
			if q.SortOrder == sortDescending {
				return a > b
			}
			return a < b
		})
	default:
		sort.SliceStable(hits, func(i, j int) bool { return score(hits[i]) > score(hits[j]) })
	}
}

func page(hits []scored, pageNum, limit int) []scored {
	start := (pageNum - 1) * limit
	if start >= len(hits) {
		return nil
	}
	end := min(start+limit, len(hits))
	return hits[start:end]
}

// translateFilters maps user-facing filter values to canonical ones.
func (s *SearchService) translateFilters(q domain.SearchQuery) filters {
	var f filters
	for _, v := range q.Categories {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		id := strings.ToLower(v)
		if s.categories != nil {
			if resolved, ok := s.categories.Resolve(v); ok {
				id = resolved
			}
		}
		f.categories = appendUnique(f.categories, id)
	}
	for _, v := range q.FileTypes {
		if ft, ok := NormaliseFileType(v); ok {
			if !containsType(f.fileTypes, ft) {
				f.fileTypes = append(f.fileTypes, ft)
			}
		} else if v = strings.TrimSpace(v); v != "" {
			logger.Debug("Unknown file type filter %q", v)
			f.fileTypes = append(f.fileTypes, domain.FileType(strings.ToLower(v)))
		}
	}
	f.from, f.to = q.DateFrom, q.DateTo
	return f
}

// NormaliseFileType maps a loose file type name to a canonical type.
func NormaliseFileType(v string) (domain.FileType, bool) {
	v = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v), "."))
	ft, ok := fileTypeAliases[v]
	return ft, ok
}

// expression renders the filters in the index filter syntax.
func (f filters) expression() string {
	var clauses []string
	if len(f.categories) > 0 {
		clauses = append(clauses, fmt.Sprintf("%s IN [%s]", indexFieldCategories, quoteAll(f.categories)))
	}
	if len(f.fileTypes) > 0 {
		types := make([]string, len(f.fileTypes))
		for i, ft := range f.fileTypes {
			types[i] = string(ft)
		}
		clauses = append(clauses, fmt.Sprintf("%s IN [%s]", indexFieldFileType, quoteAll(types)))
	}
	if f.from != nil {
		clauses = append(clauses, fmt.Sprintf("%s >= %d", indexFieldModifiedAt, f.from.UnixMilli()))
	}
	if f.to != nil {
		clauses = append(clauses, fmt.Sprintf("%s <= %d", indexFieldModifiedAt, f.to.UnixMilli()))
	}
	return strings.Join(clauses, filterClauseSeparator)
}

// match applies the filters to a hydrated record.
func (f filters) match(rec *domain.DocumentRecord) bool {
	if len(f.fileTypes) > 0 && !containsType(f.fileTypes, rec.Document.FileType) {
		return false
	}
	if len(f.categories) > 0 {
		found := false
		for _, id := range rec.CategoryIDs() {
			for _, want := range f.categories {
				if id == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	if f.from != nil && rec.Document.ModifiedAt.Before(*f.from) {
		return false
	}
	if f.to != nil && rec.Document.ModifiedAt.After(*f.to) {
		return false
	}
	return true
}

// indexSort maps a sort key to index sort rules. Relevance needs none.
func indexSort(by, order string) []string {
	switch by {
	case domain.SortDate:
		if order == sortAscending {
			return []string{indexFieldModifiedAt + ":asc"}
		}
		return []string{indexFieldModifiedAt + ":desc"}
	case domain.SortTitle:
		if order == sortDescending {
			return []string{indexFieldTitle + ":desc"}
		}
		return []string{indexFieldTitle + ":asc"}
	default:
		return nil
	}
}

// phraseQuery quotes a bare, space-free query so the index matches it as
// a phrase instead of splitting short CJK terms.
func phraseQuery(q string) string {
	if q == "" || strings.ContainsAny(q, " \t\"") {
		return q
	}
	return `"` + q + `"`
}

// extractHighlights collects tagged matches from formatted fields.
func extractHighlights(formatted map[string]string) []domain.Highlight {
	var out []domain.Highlight
	for _, field := range highlightFields {
		snippet, ok := formatted[field]
		if !ok || !strings.Contains(snippet, highlightOpen) {
			continue
		}
		out = append(out, domain.Highlight{
			Field:   field,
			Snippet: snippet,
			Matches: HighlightMatches(snippet),
		})
	}
	return out
}

// HighlightMatches returns the distinct substrings wrapped in highlight tags.
func HighlightMatches(s string) []string {
	var out []string
	for _, m := range highlightPattern.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			out = appendUnique(out, m[1])
		}
	}
	return out
}

func fromIndexDocument(d driven.IndexDocument) domain.SearchResult {
	return domain.SearchResult{
		ID:            d.ID,
		Title:         d.Title,
		FilePath:      d.FilePath,
		FileType:      domain.FileType(d.FileType),
		Summary:       d.Summary,
		Snippet:       truncateSnippet(d.Content),
		Categories:    d.Categories,
		CategoryNames: d.CategoryNames,
		Keywords:      d.Keywords,
		FileSize:      d.FileSize,
		CreatedAt:     time.UnixMilli(d.CreatedAt),
		ModifiedAt:    time.UnixMilli(d.ModifiedAt),
	}
}

func fromRecord(rec *domain.DocumentRecord) domain.SearchResult {
	doc := rec.Document
	snippet := doc.Summary
	if snippet == "" {
		snippet = truncateSnippet(doc.Content)
	}
	return domain.SearchResult{
		ID:            doc.ID,
		Title:         doc.Title,
		FilePath:      doc.FilePath,
		FileType:      doc.FileType,
		Summary:       doc.Summary,
		Snippet:       snippet,
		Categories:    rec.CategoryIDs(),
		CategoryNames: rec.CategoryNames(),
		Keywords:      rec.KeywordTexts(),
		FileSize:      doc.FileSize,
		CreatedAt:     doc.CreatedAt,
		ModifiedAt:    doc.ModifiedAt,
	}
}

func truncateSnippet(s string) string {
	if utf8.RuneCountInString(s) <= snippetLength {
		return s
	}
	return string([]rune(s)[:snippetLength]) + "..."
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func containsType(list []domain.FileType, ft domain.FileType) bool {
	for _, t := range list {
		if t == ft {
			return true
		}
	}
	return false
}
