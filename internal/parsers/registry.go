// Package parsers dispatches text extraction to per-format parsers by
// file extension. The same extension table decides which files a scan
// picks up.
package parsers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/parsers/docx"
	"github.com/custodia-labs/docsift/internal/parsers/image"
	"github.com/custodia-labs/docsift/internal/parsers/pdf"
	"github.com/custodia-labs/docsift/internal/parsers/plaintext"
	"github.com/custodia-labs/docsift/internal/parsers/pptx"
	"github.com/custodia-labs/docsift/internal/parsers/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

type entry struct {
	fileType domain.FileType
	parser   driven.Parser
}

// Registry maps lowercase extensions to a file type and parser.
// An extension registered with a nil parser is scannable but never parsed.
type Registry struct {
	entries map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Default returns the registry for every supported format. The describer
// may be nil, in which case images are indexed with a placeholder.
func Default(describer driven.ImageDescriber) *Registry {
	r := NewRegistry()
	r.Register(domain.FileTypePDF, pdf.New(), ".pdf")
	r.Register(domain.FileTypeDOCX, docx.New(), ".docx")
	r.Register(domain.FileTypeXLSX, xlsx.New(), ".xlsx")
	r.Register(domain.FileTypePPTX, pptx.New(), ".pptx")
	r.Register(domain.FileTypeText, plaintext.New(), ".txt", ".md")
	r.Register(domain.FileTypeImage, image.New(describer), image.Extensions()...)
	r.Register(domain.FileTypeFixedLayout, nil, ".ofd")
	return r
}

// Register associates extensions with a file type and parser.
func (r *Registry) Register(ft domain.FileType, p driven.Parser, exts ...string) {
	for _, ext := range exts {
		r.entries[strings.ToLower(ext)] = entry{fileType: ft, parser: p}
	}
}

// Supported reports whether path has a registered extension.
func (r *Registry) Supported(path string) bool {
	_, ok := r.lookup(path)
	return ok
}

// FileType returns the file type registered for path's extension.
func (r *Registry) FileType(path string) (domain.FileType, bool) {
	e, ok := r.lookup(path)
	return e.fileType, ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.entries))
	for ext := range r.entries {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse dispatches to the parser registered for path's extension.
// Formats without a parser return an empty body titled by the file name.
func (r *Registry) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	e, ok := r.lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(path))
	}
	if e.parser == nil {
		return &domain.ParsedDocument{
			Title:    domain.TitleFromPath(path),
			Metadata: map[string]any{},
		}, nil
	}
	return e.parser.Parse(ctx, path)
}

func (r *Registry) lookup(path string) (entry, bool) {
	e, ok := r.entries[strings.ToLower(filepath.Ext(path))]
	return e, ok
}
