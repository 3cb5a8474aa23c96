package driven

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// Classifier assigns taxonomy categories to a document.
// It never fails: an unmatched document receives the uncategorized bucket.
type Classifier interface {
	Assign(ctx context.Context, fileType domain.FileType, title, content string) []domain.Classification

	// Categories returns the fixed catalog in sort order.
	Categories() []domain.Category
}

// Summariser produces a short summary, falling back to truncation.
type Summariser interface {
	Summarise(ctx context.Context, content string, maxLength int) string
}

// QuestionAnswerer answers questions about a document's content.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, content string) (string, error)
}

// ImageDescriber describes an image and extracts visible text.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, image ImageData) (string, error)
}
