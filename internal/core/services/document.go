package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultHistoryLimit is the number of sessions History returns by default.
const DefaultHistoryLimit = 10

// Launcher starts an external program without waiting for it.
type Launcher func(name string, args ...string) error

// DocumentDeps groups the collaborators of a DocumentService.
// Index, Vectors and Answerer are optional.
type DocumentDeps struct {
	Documents  driven.DocumentStore
	Categories driven.CategoryStore
	Scans      driven.ScanStore
	Index      driven.FullTextIndex
	Vectors    driven.VectorStore
	Answerer   driven.QuestionAnswerer
}

// DocumentService manages ingested documents.
type DocumentService struct {
	deps   DocumentDeps
	launch Launcher
}

// NewDocumentService creates a new document service.
func NewDocumentService(deps DocumentDeps) *DocumentService {
	return &DocumentService{deps: deps, launch: startCommand}
}

// SetLauncher replaces the program launcher used by Reveal.
func (s *DocumentService) SetLauncher(l Launcher) {
	s.launch = l
}

// List returns a filtered page of documents.
func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentRecord, int, error) {
	return s.deps.Documents.ListDocuments(ctx, filter)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	return s.deps.Documents.GetDocument(ctx, id)
}

// Delete removes a document from the store, then from the index and vectors.
// Projection failures are logged; reindex reconciles them.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.deps.Documents.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.dropProjections(ctx, id)
	return nil
}

func (s *DocumentService) dropProjections(ctx context.Context, id string) {
	if s.deps.Index != nil {
		if err := s.deps.Index.Delete(ctx, id); err != nil {
			logger.Warn("Failed to remove %s from full-text index: %v", id, err)
		}
	}
	if s.deps.Vectors != nil {
		if err := s.deps.Vectors.Remove(ctx, id); err != nil {
			logger.Warn("Failed to remove %s from vector store: %v", id, err)
		}
	}
}

// Reveal opens the folder containing the document.
func (s *DocumentService) Reveal(ctx context.Context, id string) error {
	rec, err := s.deps.Documents.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	path := rec.Document.FilePath
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: file no longer exists: %s", domain.ErrNotFound, path)
	}

	switch runtime.GOOS {
	case "darwin":
		err = s.launch("open", "-R", path)
	case "windows":
		// explorer exits non-zero even when it succeeds.
		if lerr := s.launch("explorer", "/select,"+path); lerr != nil {
			logger.Debug("explorer returned: %v", lerr)
		}
	default:
		err = s.launch("xdg-open", filepath.Dir(path))
	}
	if err != nil {
		return fmt.Errorf("revealing %s: %w", path, err)
	}
	return nil
}

// Ask answers a question about a document's content.
func (s *DocumentService) Ask(ctx context.Context, id, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question cannot be empty", domain.ErrInvalidInput)
	}
	if s.deps.Answerer == nil {
		return "", domain.ErrLLMUnavailable
	}
	rec, err := s.deps.Documents.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	content := rec.Document.Content
	if content == "" {
		content = rec.Document.Summary
	}
	return s.deps.Answerer.Answer(ctx, question, content)
}

// Categories lists the catalog with document counts.
func (s *DocumentService) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	return s.deps.Categories.List(ctx)
}

// Stats summarises the corpus, including the vector count when available.
func (s *DocumentService) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	stats, err := s.deps.Documents.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("corpus stats: %w", err)
	}
	if s.deps.Vectors != nil {
		vs, err := s.deps.Vectors.Stats(ctx)
		if err != nil {
			logger.Warn("Failed to read vector stats: %v", err)
		} else {
			stats.Vectors = vs.TotalVectors
		}
	}
	return stats, nil
}

// History returns recent scan sessions.
func (s *DocumentService) History(ctx context.Context, limit int) ([]domain.ScanSession, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.deps.Scans.List(ctx, limit)
}

// Clear removes scan history, or every document with its projections.
func (s *DocumentService) Clear(ctx context.Context, target driving.ClearTarget) error {
	switch target {
	case driving.ClearHistory:
		if err := s.deps.Scans.Clear(ctx); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		logger.Info("Cleared scan history")
		return nil
	case driving.ClearAll:
	default:
		return fmt.Errorf("%w: unknown clear target %q", domain.ErrInvalidInput, target)
	}

	if err := s.deps.Documents.Clear(ctx); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if err := s.deps.Scans.Clear(ctx); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	if s.deps.Index != nil {
		if err := s.deps.Index.Reset(ctx); err != nil {
			logger.Warn("Failed to reset full-text index: %v", err)
		}
	}
	if s.deps.Vectors != nil {
		if err := s.deps.Vectors.Clear(ctx); err != nil {
			return fmt.Errorf("clearing vectors: %w", err)
		}
	}
	logger.Info("Cleared all documents")
	return nil
}

func startCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...) //nolint:gosec // fixed program names
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}
