package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// categoryStore implements driven.CategoryStore.
type categoryStore struct {
	store *Store
}

var _ driven.CategoryStore = (*categoryStore)(nil)

// Sync upserts the catalog and removes image assignments from documents
// that are not images. Running it twice leaves the same state.
func (s *categoryStore) Sync(ctx context.Context, categories []domain.Category) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, c := range categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, local_name, slug, description, icon, color, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				local_name = excluded.local_name,
				slug = excluded.slug,
				description = excluded.description,
				icon = excluded.icon,
				color = excluded.color,
				sort_order = excluded.sort_order
		`, c.ID, c.Name, nullString(c.LocalName), c.Slug, nullString(c.Description),
			nullString(c.Icon), nullString(c.Color), c.SortOrder)
		if err != nil {
			return fmt.Errorf("saving category %s: %w", c.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM document_categories
		WHERE category_id = ?
		AND document_id IN (SELECT id FROM documents WHERE file_type != ?)
	`, domain.CategoryImage, string(domain.FileTypeImage))
	if err != nil {
		return fmt.Errorf("pruning image assignments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns every category in sort order with its document count.
func (s *categoryStore) List(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.local_name, c.slug, c.description, c.icon, c.color, c.sort_order,
			COUNT(dc.document_id)
		FROM categories c
		LEFT JOIN document_categories dc ON dc.category_id = c.id
		GROUP BY c.id
		ORDER BY c.sort_order, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var out []domain.CategoryCount //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			cc                                  domain.CategoryCount
			localName, description, icon, color sql.NullString
		)
		if err := rows.Scan(&cc.ID, &cc.Name, &localName, &cc.Slug, &description,
			&icon, &color, &cc.SortOrder, &cc.DocumentCount); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cc.LocalName = localName.String
		cc.Description = description.String
		cc.Icon = icon.String
		cc.Color = color.String
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return out, nil
}
