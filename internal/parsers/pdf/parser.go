// Package pdf extracts text from PDF files through a chain of independent
// extraction engines, degrading to a file-name placeholder when none of
// them yields usable text.
package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

const (
	// DefaultMinTextLength is the minimum trimmed rune count a tier must
	// produce before its output is accepted.
	DefaultMinTextLength = 50

	// FallbackParserName tags documents produced by the placeholder tier.
	FallbackParserName = "fallback-filename-only"

	// FallbackError is recorded in metadata when every engine failed.
	FallbackError = "all-tiers-failed"
)

const placeholderFormat = "[System notice: no usable text was extracted; this file may be an image-only or scanned PDF and is indexed by file name only] Original file name: %s"

// Extraction is the raw output of one extraction engine.
type Extraction struct {
	Text  string
	Pages int
}

// Extractor is one tier of the extraction chain.
type Extractor interface {
	// Name identifies the engine in document metadata.
	Name() string

	// Extract returns the text layer of the PDF at path.
	Extract(ctx context.Context, path string) (Extraction, error)
}

// Parser runs extractors in order and keeps the first usable result.
// It never returns an error for a PDF path.
type Parser struct {
	tiers     []Extractor
	minLength int
}

// New creates a parser with the default engines: the pure-Go text layer
// reader followed by poppler's pdftotext.
func New() *Parser {
	return NewWithExtractors(DefaultMinTextLength, NativeExtractor{}, NewPopplerExtractor())
}

// NewWithExtractors creates a parser with custom tiers (useful for testing).
func NewWithExtractors(minLength int, tiers ...Extractor) *Parser {
	if minLength <= 0 {
		minLength = DefaultMinTextLength
	}
	return &Parser{tiers: tiers, minLength: minLength}
}

// Parse extracts text from the PDF at path.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	title := domain.TitleFromPath(path)

	for _, tier := range p.tiers {
		if ctx.Err() != nil {
			break
		}

		ex, err := tier.Extract(ctx, path)
		if err != nil {
			logger.Debug("pdf: %s failed for %s: %v", tier.Name(), filepath.Base(path), err)
			continue
		}

		text := strings.TrimSpace(ex.Text)
		if utf8.RuneCountInString(text) < p.minLength {
			logger.Debug("pdf: %s produced %d chars for %s, trying next engine",
				tier.Name(), utf8.RuneCountInString(text), filepath.Base(path))
			continue
		}

		metadata := map[string]any{
			"parser":    tier.Name(),
			"wordCount": len(strings.Fields(text)),
		}
		if ex.Pages > 0 {
			metadata["pageCount"] = ex.Pages
		}
		return &domain.ParsedDocument{Title: title, Content: text, Metadata: metadata}, nil
	}

	logger.Warn("pdf: no engine extracted text from %s, indexing by file name", filepath.Base(path))
	return &domain.ParsedDocument{
		Title:   title,
		Content: fmt.Sprintf(placeholderFormat, title),
		Metadata: map[string]any{
			"parser": FallbackParserName,
			"error":  FallbackError,
		},
	}, nil
}
