// Package pptx extracts slide and speaker-note text from PowerPoint
// (.pptx) presentations.
package pptx

import (
	"archive/zip"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/parsers/ooxml"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

var (
	slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	notesPattern = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)
)

// Parser handles PPTX presentations.
type Parser struct{}

// New creates a new PPTX parser.
func New() *Parser {
	return &Parser{}
}

// Parse emits one "[Slide N]" block per non-empty slide in numeric order,
// followed by all speaker notes under a single "[Speaker Notes]" header.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	zr, err := ooxml.Open(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	slides := numbered(&zr.Reader, slidePattern)
	var blocks []string
	for _, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := joinedRuns(s.file)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[Slide %d]\n%s", s.n, text))
	}

	var notes []string
	for _, n := range numbered(&zr.Reader, notesPattern) {
		text, err := joinedRuns(n.file)
		if err != nil {
			return nil, err
		}
		if text != "" {
			notes = append(notes, text)
		}
	}

	content := strings.Join(blocks, "\n\n")
	if len(notes) > 0 {
		content += "\n\n[Speaker Notes]\n" + strings.Join(notes, "\n")
	}
	content = strings.TrimSpace(content)

	return &domain.ParsedDocument{
		Title:   domain.TitleFromPath(path),
		Content: content,
		Metadata: map[string]any{
			"slideCount": len(slides),
			"wordCount":  len(strings.Fields(content)),
		},
	}, nil
}

type part struct {
	n    int
	file *zip.File
}

// numbered returns the parts matching pattern sorted by their number,
// so slide10 follows slide9.
func numbered(zr *zip.Reader, pattern *regexp.Regexp) []part {
	var parts []part
	for _, f := range zr.File {
		m := pattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, part{n: n, file: f})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].n < parts[j].n })
	return parts
}

func joinedRuns(f *zip.File) (string, error) {
	runs, err := ooxml.Runs(f, "t")
	if err != nil {
		return "", err
	}
	var kept []string
	for _, r := range runs {
		if r = strings.TrimSpace(r); r != "" {
			kept = append(kept, r)
		}
	}
	return strings.Join(kept, " "), nil
}
