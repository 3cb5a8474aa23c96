package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// scanStore implements driven.ScanStore.
type scanStore struct {
	store *Store
}

var _ driven.ScanStore = (*scanStore)(nil)

const scanColumns = `id, root_path, status, started_at, completed_at, total_files,
	processed_files, new_files, updated_files, skipped_files, errors`

// Save creates or updates a session.
func (s *scanStore) Save(ctx context.Context, session *domain.ScanSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}

	errorsJSON, err := json.Marshal(session.Errors)
	if err != nil {
		return fmt.Errorf("marshalling errors: %w", err)
	}

	var completedAt sql.NullTime
	if session.CompletedAt != nil {
		completedAt = nullTime(*session.CompletedAt)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO scan_sessions (`+scanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			completed_at = excluded.completed_at,
			total_files = excluded.total_files,
			processed_files = excluded.processed_files,
			new_files = excluded.new_files,
			updated_files = excluded.updated_files,
			skipped_files = excluded.skipped_files,
			errors = excluded.errors
	`, session.ID, session.RootPath, string(session.Status), session.StartedAt.UTC(), completedAt,
		session.TotalFiles, session.ProcessedFiles, session.NewFiles, session.UpdatedFiles,
		session.SkippedFiles, string(errorsJSON))
	if err != nil {
		return fmt.Errorf("saving scan session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *scanStore) Get(ctx context.Context, id string) (*domain.ScanSession, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM scan_sessions WHERE id = ?`, id)
	return scanSession(row)
}

// List returns the most recent sessions first.
func (s *scanStore) List(ctx context.Context, limit int) ([]domain.ScanSession, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+scanColumns+` FROM scan_sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scan sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ScanSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scan sessions: %w", err)
	}
	return sessions, nil
}

// Clear removes all sessions.
func (s *scanStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM scan_sessions"); err != nil {
		return fmt.Errorf("clearing scan sessions: %w", err)
	}
	return nil
}

func scanSession(row scanner) (*domain.ScanSession, error) {
	var (
		sess        domain.ScanSession
		status      string
		startedAt   sql.NullTime
		completedAt sql.NullTime
		errorsJSON  sql.NullString
	)
	err := row.Scan(&sess.ID, &sess.RootPath, &status, &startedAt, &completedAt,
		&sess.TotalFiles, &sess.ProcessedFiles, &sess.NewFiles, &sess.UpdatedFiles,
		&sess.SkippedFiles, &errorsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning scan session: %w", err)
	}

	sess.Status = domain.ScanStatus(status)
	if startedAt.Valid {
		sess.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		t := completedAt.Time
		sess.CompletedAt = &t
	}
	if errorsJSON.Valid && errorsJSON.String != "" && errorsJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(errorsJSON.String), &sess.Errors); err != nil {
			return nil, fmt.Errorf("unmarshaling scan errors: %w", err)
		}
	}
	return &sess, nil
}
