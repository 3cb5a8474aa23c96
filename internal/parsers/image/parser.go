// Package image turns image files into searchable text by asking a
// vision-capable chat model to describe them.
package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Unavailable is the content used when no description could be produced.
const Unavailable = "[System notice: image description timed out or was rate limited, skipped]"

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MIMEType returns the MIME type for an image path, defaulting to PNG.
func MIMEType(path string) string {
	if m, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return "image/png"
}

// Extensions returns the supported image extensions.
func Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
}

// Parser handles image files. A nil describer always yields the
// placeholder; describer failures never surface as errors.
type Parser struct {
	describer driven.ImageDescriber
}

// New creates an image parser.
func New(describer driven.ImageDescriber) *Parser {
	return &Parser{describer: describer}
}

// Parse reads the image and asks the describer for its content.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", domain.ErrUnreadable, err)
	}

	mime := MIMEType(path)
	content, described := p.describe(ctx, path, driven.ImageData{
		MIMEType: mime,
		Base64:   base64.StdEncoding.EncodeToString(data),
	})

	return &domain.ParsedDocument{
		Title:   domain.TitleFromPath(path),
		Content: content,
		Metadata: map[string]any{
			"imageType":     mime,
			"fileSizeBytes": len(data),
			"described":     described,
		},
	}, nil
}

func (p *Parser) describe(ctx context.Context, path string, img driven.ImageData) (string, bool) {
	if p.describer == nil {
		return Unavailable, false
	}

	text, err := p.describer.DescribeImage(ctx, img)
	if err != nil {
		logger.Warn("image: describe %s: %v", filepath.Base(path), err)
		return Unavailable, false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Unavailable, false
	}
	return text, true
}
