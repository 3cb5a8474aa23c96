package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Listing defaults.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, title, file_path, file_type, file_size, content, summary,
	content_hash, metadata, created_at, modified_at, indexed_at`

// SaveDocument upserts the document and replaces its assignments and
// keywords in one transaction.
func (s *documentStore) SaveDocument(ctx context.Context, rec *domain.DocumentRecord) error {
	if rec == nil || rec.Document.ID == "" {
		return domain.ErrInvalidInput
	}
	doc := rec.Document

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			file_path = excluded.file_path,
			file_type = excluded.file_type,
			file_size = excluded.file_size,
			content = excluded.content,
			summary = excluded.summary,
			content_hash = excluded.content_hash,
			metadata = excluded.metadata,
			modified_at = excluded.modified_at,
			indexed_at = excluded.indexed_at
	`, doc.ID, doc.Title, doc.FilePath, string(doc.FileType), doc.FileSize,
		nullString(doc.Content), nullString(doc.Summary), doc.ContentHash, string(metadataJSON),
		doc.CreatedAt.UTC(), nullTime(doc.ModifiedAt), nullTime(doc.IndexedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM document_categories WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing categories: %w", err)
	}
	for i, c := range rec.Categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO document_categories (document_id, category_id, confidence, source, position)
			VALUES (?, ?, ?, ?, ?)
		`, doc.ID, c.CategoryID, c.Confidence, nullString(string(c.Source)), i); err != nil {
			return fmt.Errorf("saving category %s: %w", c.CategoryID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM keywords WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing keywords: %w", err)
	}
	for _, k := range rec.Keywords {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO keywords (document_id, keyword, weight, frequency)
			VALUES (?, ?, ?, ?)
		`, doc.ID, k.Keyword, k.Weight, k.Frequency); err != nil {
			return fmt.Errorf("saving keyword: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document with its assignments and keywords.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	rec := &domain.DocumentRecord{Document: *doc}
	if err := s.loadRelations(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteDocument removes a document; assignments and keywords cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDocuments returns a filtered page of documents and the total count.
// Listed documents omit Content.
func (s *documentStore) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.FileType != "" {
		where = append(where, "d.file_type = ?")
		args = append(args, string(filter.FileType))
	}
	if filter.CategoryID != "" {
		where = append(where, `EXISTS (SELECT 1 FROM document_categories dc
			WHERE dc.document_id = d.id AND dc.category_id = ?)`)
		args = append(args, filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, `(d.title LIKE ? ESCAPE '\' OR d.content LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(q), likePattern(q))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents d"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := `SELECT d.id, d.title, d.file_path, d.file_type, d.file_size, NULL, d.summary,
		d.content_hash, d.metadata, d.created_at, d.modified_at, d.indexed_at
		FROM documents d` + clause + " ORDER BY " + orderBy(filter.SortBy, filter.SortOrder) + " LIMIT ? OFFSET ?"
	rows, err := s.store.db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying documents: %w", err)
	}

	var records []domain.DocumentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		records = append(records, domain.DocumentRecord{Document: *doc})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, fmt.Errorf("iterating documents: %w", err)
	}
	rows.Close()

	for i := range records {
		if err := s.loadRelations(ctx, &records[i]); err != nil {
			return nil, 0, err
		}
	}
	return records, total, nil
}

// Fingerprints returns the stored hash for every path.
func (s *documentStore) Fingerprints(ctx context.Context) (map[string]domain.FileFingerprint, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT file_path, id, content_hash, created_at FROM documents")
	if err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.FileFingerprint)
	for rows.Next() {
		var (
			path      string
			fp        domain.FileFingerprint
			createdAt sql.NullTime
		)
		if err := rows.Scan(&path, &fp.DocumentID, &fp.ContentHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		if createdAt.Valid {
			fp.CreatedAt = createdAt.Time
		}
		out[path] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fingerprints: %w", err)
	}
	return out, nil
}

// SearchTitles suggests matching titles first, then keywords.
func (s *documentStore) SearchTitles(ctx context.Context, fragment string, limit int) ([]domain.Suggestion, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || limit <= 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var out []domain.Suggestion
	collect := func(source, query string, args ...any) error {
		rows, err := s.store.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("querying %s suggestions: %w", source, err)
		}
		defer rows.Close()
		for rows.Next() && len(out) < limit {
			var text string
			if err := rows.Scan(&text); err != nil {
				return fmt.Errorf("scanning suggestion: %w", err)
			}
			if key := strings.ToLower(text); !seen[key] {
				seen[key] = true
				out = append(out, domain.Suggestion{Text: text, Source: source})
			}
		}
		return rows.Err()
	}

	if err := collect("title", `SELECT title FROM documents WHERE title LIKE ? ESCAPE '\'
		ORDER BY modified_at DESC LIMIT ?`, likePattern(fragment), limit); err != nil {
		return nil, err
	}
	if len(out) < limit {
		if err := collect("keyword", `SELECT keyword FROM keywords WHERE keyword LIKE ? ESCAPE '\'
			GROUP BY keyword ORDER BY SUM(weight) DESC LIMIT ?`, likePattern(fragment), limit); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Stats aggregates corpus counters. Vectors is left for the caller.
func (s *documentStore) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	stats := &domain.CorpusStats{ByFileType: make(map[domain.FileType]int)}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(DISTINCT category_id) FROM document_categories),
			(SELECT COUNT(DISTINCT keyword) FROM keywords),
			(SELECT COALESCE(SUM(file_size), 0) FROM documents)
	`)
	if err := row.Scan(&stats.Documents, &stats.CategoriesInUse, &stats.Keywords, &stats.StorageBytes); err != nil {
		return nil, fmt.Errorf("scanning stats: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, "SELECT file_type, COUNT(*) FROM documents GROUP BY file_type")
	if err != nil {
		return nil, fmt.Errorf("querying type counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ft string
			n  int
		)
		if err := rows.Scan(&ft, &n); err != nil {
			return nil, fmt.Errorf("scanning type count: %w", err)
		}
		stats.ByFileType[domain.FileType(ft)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating type counts: %w", err)
	}

	last, err := (&scanStore{store: s.store}).List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(last) > 0 {
		stats.LastScan = &last[0]
	}
	return stats, nil
}

// Clear removes every document.
func (s *documentStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// loadRelations fills the record's categories and keywords.
func (s *documentStore) loadRelations(ctx context.Context, rec *domain.DocumentRecord) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT dc.category_id, c.name, dc.confidence, dc.source
		FROM document_categories dc JOIN categories c ON c.id = dc.category_id
		WHERE dc.document_id = ?
		ORDER BY dc.position
	`, rec.Document.ID)
	if err != nil {
		return fmt.Errorf("querying categories: %w", err)
	}
	for rows.Next() {
		var (
			c      domain.Classification
			source sql.NullString
		)
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.Confidence, &source); err != nil {
			rows.Close()
			return fmt.Errorf("scanning category: %w", err)
		}
		c.Source = domain.ClassificationSource(source.String)
		rec.Categories = append(rec.Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating categories: %w", err)
	}

	rows, err = s.store.db.QueryContext(ctx, `
		SELECT keyword, weight, frequency FROM keywords
		WHERE document_id = ? ORDER BY weight DESC, keyword
	`, rec.Document.ID)
	if err != nil {
		return fmt.Errorf("querying keywords: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k domain.Keyword
		if err := rows.Scan(&k.Keyword, &k.Weight, &k.Frequency); err != nil {
			return fmt.Errorf("scanning keyword: %w", err)
		}
		rec.Keywords = append(rec.Keywords, k)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a single document row.
func scanDocument(row scanner) (*domain.Document, error) {
	var (
		doc                   domain.Document
		fileType              string
		content, summary      sql.NullString
		metadataJSON          sql.NullString
		createdAt             sql.NullTime
		modifiedAt, indexedAt sql.NullTime
	)
	err := row.Scan(&doc.ID, &doc.Title, &doc.FilePath, &fileType, &doc.FileSize,
		&content, &summary, &doc.ContentHash, &metadataJSON, &createdAt, &modifiedAt, &indexedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.FileType = domain.FileType(fileType)
	doc.Content = content.String
	doc.Summary = summary.String
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if modifiedAt.Valid {
		doc.ModifiedAt = modifiedAt.Time
	}
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}
	return &doc, nil
}

// orderBy maps a sort key to a fixed ORDER BY clause.
func orderBy(sortBy, sortOrder string) string {
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	switch sortBy {
	case domain.SortTitle:
		return "d.title " + dir + ", d.id"
	case domain.SortDate, "modified", "modifiedAt":
		return "d.modified_at " + dir + ", d.id"
	default:
		return "d.created_at " + dir + ", d.id"
	}
}

// likePattern wraps s for a substring LIKE match with '\' as escape.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
