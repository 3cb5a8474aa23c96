// Package plaintext reads text and Markdown files, honouring byte-order
// marks and falling back to GB18030 for legacy Chinese encodings.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles plain text documents.
type Parser struct {
	// StripMarkdown removes Markdown syntax from .md and .markdown files.
	StripMarkdown bool
}

// New creates a plain text parser that strips Markdown syntax.
func New() *Parser {
	return &Parser{StripMarkdown: true}
}

// Parse reads and decodes the file at path.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !isTextFile(path) {
		return nil, fmt.Errorf("%w: %s is not a text file", domain.ErrUnsupportedType, filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read file: %v", domain.ErrUnreadable, err)
	}

	text, encoding, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{"encoding": encoding}
	if p.StripMarkdown && IsMarkdown(path) {
		text = stripMarkdown(text)
		metadata["format"] = "markdown"
	}

	content := strings.TrimSpace(text)
	metadata["wordCount"] = len(strings.Fields(content))
	metadata["lineCount"] = strings.Count(content, "\n") + 1

	return &domain.ParsedDocument{
		Title:    domain.TitleFromPath(path),
		Content:  content,
		Metadata: metadata,
	}, nil
}

// Decode converts raw file bytes to a string. A UTF-8 or UTF-16 byte-order
// mark selects the encoding and is removed; otherwise the bytes must be
// valid UTF-8 or GB18030. Binary content wraps domain.ErrUnreadable.
func Decode(raw []byte) (text string, encoding string, err error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		encoding = "utf-8-bom"
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		encoding = "utf-16le"
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		encoding = "utf-16be"
	}

	if encoding != "" {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		if err != nil {
			return "", "", fmt.Errorf("%w: decode %s: %v", domain.ErrUnreadable, encoding, err)
		}
		return string(out), encoding, nil
	}

	if bytes.IndexByte(raw, 0) >= 0 {
		return "", "", fmt.Errorf("%w: binary content", domain.ErrUnreadable)
	}
	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}

	out, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: decode gb18030: %v", domain.ErrUnreadable, err)
	}
	return string(out), "gb18030", nil
}

// IsMarkdown reports whether path has a Markdown extension.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".rst": true, ".log": true,
	".json": true, ".xml": true, ".yaml": true, ".yml": true, ".toml": true,
	".ini": true, ".cfg": true, ".conf": true, ".env": true,
	".js": true, ".ts": true, ".jsx": true, ".tsx": true, ".mjs": true, ".cjs": true,
	".py": true, ".rb": true, ".go": true, ".rs": true, ".java": true,
	".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".css": true, ".scss": true, ".sass": true, ".less": true,
	".html": true, ".htm": true, ".vue": true, ".svelte": true,
	".sql": true, ".sh": true, ".bash": true, ".zsh": true, ".fish": true,
	".gitignore": true, ".dockerignore": true, ".editorconfig": true,
}

// isTextFile reports whether path has a common text, markup or source
// extension. Files like ".gitignore" count by their full name.
func isTextFile(path string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}
