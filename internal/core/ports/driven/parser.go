package driven

import (
	"context"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// Parser extracts text from a local file.
// Parsers fail only for truly unreadable input.
type Parser interface {
	Parse(ctx context.Context, path string) (*domain.ParsedDocument, error)
}

// ParserRegistry dispatches parsing by file extension.
type ParserRegistry interface {
	Parser

	// Supported reports whether the path has a scannable extension.
	Supported(path string) bool

	// FileType returns the detected file type for the path.
	FileType(path string) (domain.FileType, bool)
}
