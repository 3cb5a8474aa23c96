// Package xlsx extracts cell text from Excel (.xlsx) workbooks.
package xlsx

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles XLSX workbooks.
type Parser struct{}

// New creates a new XLSX parser.
func New() *Parser {
	return &Parser{}
}

// Parse renders every sheet as CSV under a "--- [Sheet: name] ---" header.
// Blank rows are skipped.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var b strings.Builder
	for _, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %q: %v", domain.ErrUnreadable, name, err)
		}

		body, err := sheetCSV(rows)
		if err != nil {
			return nil, fmt.Errorf("encode sheet %q: %w", name, err)
		}

		fmt.Fprintf(&b, "\n--- [Sheet: %s] ---\n", name)
		b.WriteString(body)
	}

	content := strings.TrimSpace(b.String())
	return &domain.ParsedDocument{
		Title:   domain.TitleFromPath(path),
		Content: content,
		Metadata: map[string]any{
			"sheetCount": len(sheets),
			"wordCount":  len(strings.Fields(content)),
		},
	}, nil
}

func sheetCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
