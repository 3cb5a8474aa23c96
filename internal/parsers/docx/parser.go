// Package docx extracts text from Word (.docx) documents.
package docx

import (
	"archive/zip"
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/parsers/ooxml"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles DOCX documents.
type Parser struct{}

// New creates a new DOCX parser.
func New() *Parser {
	return &Parser{}
}

// Parse extracts paragraph text from word/document.xml.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := ooxml.Open(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	part := ooxml.Find(&zr.Reader, "word/document.xml")
	if part == nil {
		return nil, fmt.Errorf("%w: word/document.xml: %v", domain.ErrUnreadable, ooxml.ErrMissingPart)
	}

	content, err := documentText(part)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{
		"wordCount": len(strings.Fields(content)),
	}
	if t := ooxml.CoreTitle(&zr.Reader); t != "" {
		metadata["documentTitle"] = t
	}

	return &domain.ParsedDocument{
		Title:    domain.TitleFromPath(path),
		Content:  content,
		Metadata: metadata,
	}, nil
}

// documentText streams the body, one line per non-empty paragraph.
// Tabs and explicit breaks inside a paragraph are preserved.
func documentText(part *zip.File) (string, error) {
	var (
		lines   []string
		para    strings.Builder
		inProps bool
	)
	err := ooxml.Walk(part, ooxml.Visitor{
		TextElement: "t",
		Start: func(local string) {
			switch local {
			case "pPr":
				inProps = true
			case "tab":
				if !inProps {
					para.WriteByte('\t')
				}
			case "br", "cr":
				para.WriteByte('\n')
			}
		},
		End: func(local string) {
			if local == "pPr" {
				inProps = false
			}
			if local != "p" {
				return
			}
			if line := strings.TrimSpace(para.String()); line != "" {
				lines = append(lines, strings.TrimRight(para.String(), " \n"))
			}
			para.Reset()
		},
		Text: func(data []byte) { para.Write(data) },
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
