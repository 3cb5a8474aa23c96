package classifier

import (
	"context"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.Classifier = (*Engine)(nil)

// Categoriser asks an external model for a single category id.
type Categoriser interface {
	Categorise(ctx context.Context, title, content string) (string, error)
}

// Engine combines the rule engine with the optional AI path. File types with
// a forced category bypass both.
type Engine struct {
	rules *Rules
	ai    Categoriser
	useAI func() bool
}

// NewEngine creates a classifier. ai and useAI may be nil, in which case
// only the rule engine is used.
func NewEngine(rules *Rules, ai Categoriser, useAI func() bool) *Engine {
	return &Engine{rules: rules, ai: ai, useAI: useAI}
}

// Categories returns the catalog in sort order.
func (e *Engine) Categories() []domain.Category {
	return e.rules.catalog.Categories()
}

// Assign classifies one document.
func (e *Engine) Assign(ctx context.Context, fileType domain.FileType, title, content string) []domain.Classification {
	if forced, ok := e.rules.forced(fileType); ok {
		return []domain.Classification{forced}
	}

	if e.ai != nil && e.useAI != nil && e.useAI() {
		if c, ok := e.assignAI(ctx, title, content); ok {
			return []domain.Classification{c}
		}
	}

	return e.rules.Assign(fileType, content, title)
}

// assignAI returns false only when the model could not be reached, so the
// caller can fall back to the rules. Unknown answers map to the fallback bucket.
func (e *Engine) assignAI(ctx context.Context, title, content string) (domain.Classification, bool) {
	raw, err := e.ai.Categorise(ctx, title, content)
	if err != nil {
		logger.Warn("AI classification failed for %q, using rules: %v", title, err)
		return domain.Classification{}, false
	}

	cat, ok := e.rules.catalog.Category(NormaliseCategoryID(raw))
	if !ok {
		logger.Debug("AI returned unknown category %q for %q", raw, title)
		cat = e.rules.catalog.Fallback()
	}

	return domain.Classification{
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Confidence:   1,
		Source:       domain.ClassifiedByAI,
	}, true
}

// NormaliseCategoryID strips quoting and whitespace from a model answer.
func NormaliseCategoryID(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\'', '"', '`':
			return -1
		}
		return r
	}, raw)
	return strings.ToLower(strings.TrimSpace(cleaned))
}
