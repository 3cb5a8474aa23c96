// Package ooxml holds the zip and XML plumbing shared by the Office Open
// XML parsers (docx, pptx).
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// ErrMissingPart is returned when a required archive entry is absent.
var ErrMissingPart = errors.New("missing archive part")

// Open opens an OOXML package. A file that is not a valid zip archive
// yields an error wrapping domain.ErrUnreadable.
func Open(path string) (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive: %v", domain.ErrUnreadable, err)
	}
	return zr, nil
}

// Find returns the archive entry with the given name, or nil.
func Find(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Visitor receives XML tokens while a part is streamed.
type Visitor struct {
	// Start is called for every element start with its local name.
	Start func(local string)

	// End is called for every element end with its local name.
	End func(local string)

	// Text is called with character data inside text elements.
	Text func(data []byte)

	// TextElement is the local name of the elements whose character data
	// is reported, typically "t".
	TextElement string
}

// Walk streams the XML of part through v. Malformed XML wraps
// domain.ErrUnreadable.
func Walk(part *zip.File, v Visitor) error {
	rc, err := part.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", domain.ErrUnreadable, part.Name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: decode %s: %v", domain.ErrUnreadable, part.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == v.TextElement {
				depth++
			}
			if v.Start != nil {
				v.Start(t.Name.Local)
			}
		case xml.EndElement:
			if t.Name.Local == v.TextElement && depth > 0 {
				depth--
			}
			if v.End != nil {
				v.End(t.Name.Local)
			}
		case xml.CharData:
			if depth > 0 && v.Text != nil {
				v.Text(t)
			}
		}
	}
}

// Runs returns the text of every TextElement in part, in document order.
func Runs(part *zip.File, element string) ([]string, error) {
	var (
		runs []string
		cur  strings.Builder
	)
	err := Walk(part, Visitor{
		TextElement: element,
		Start: func(local string) {
			if local == element {
				cur.Reset()
			}
		},
		End: func(local string) {
			if local == element {
				runs = append(runs, cur.String())
			}
		},
		Text: func(data []byte) { cur.Write(data) },
	})
	return runs, err
}

// CoreTitle returns the dc:title from docProps/core.xml, if any.
func CoreTitle(zr *zip.Reader) string {
	part := Find(zr, "docProps/core.xml")
	if part == nil {
		return ""
	}
	runs, err := Runs(part, "title")
	if err != nil || len(runs) == 0 {
		return ""
	}
	return strings.TrimSpace(runs[0])
}
