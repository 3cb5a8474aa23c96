package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType is the detected type of an ingested file.
type FileType string

// Supported file types.
const (
	FileTypePDF         FileType = "pdf"
	FileTypeDOCX        FileType = "docx"
	FileTypeXLSX        FileType = "xlsx"
	FileTypePPTX        FileType = "pptx"
	FileTypeText        FileType = "txt"
	FileTypeImage       FileType = "image"
	FileTypeFixedLayout FileType = "ofd"
)

// AllFileTypes lists every file type in display order.
var AllFileTypes = []FileType{
	FileTypePDF, FileTypeDOCX, FileTypeXLSX, FileTypePPTX,
	FileTypeText, FileTypeImage, FileTypeFixedLayout,
}

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	for _, ft := range AllFileTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// Document is an ingested local file.
// FilePath is unique across the corpus.
type Document struct {
	// ID is the opaque document identity.
	ID string `json:"id"`

	// Title defaults to the file's base name without extension.
	Title string `json:"title"`

	// FilePath is the absolute path on disk.
	FilePath string `json:"filePath"`

	// FileType is the type detected from the file extension.
	FileType FileType `json:"fileType"`

	// FileSize is the size in bytes.
	FileSize int64 `json:"fileSize"`

	// Content is the extracted text. Empty for fixed-layout files.
	Content string `json:"content,omitempty"`

	// Summary is a short generated summary.
	Summary string `json:"summary,omitempty"`

	// ContentHash is a fast non-cryptographic digest of the file bytes.
	ContentHash string `json:"contentHash"`

	// Metadata holds parser name, item counts and error markers.
	Metadata map[string]any `json:"metadata,omitempty"`

	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	IndexedAt  time.Time `json:"indexedAt"`
}

// DocumentRecord is a document together with its derived rows.
// The relational store writes a record atomically.
type DocumentRecord struct {
	Document   Document         `json:"document"`
	Categories []Classification `json:"categories"`
	Keywords   []Keyword        `json:"keywords"`
}

// CategoryIDs returns the ids of the assigned categories.
func (r *DocumentRecord) CategoryIDs() []string {
	ids := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		ids[i] = c.CategoryID
	}
	return ids
}

// CategoryNames returns the display names of the assigned categories.
func (r *DocumentRecord) CategoryNames() []string {
	names := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		names[i] = c.CategoryName
	}
	return names
}

// KeywordTexts returns the keyword strings in weight order.
func (r *DocumentRecord) KeywordTexts() []string {
	kws := make([]string, len(r.Keywords))
	for i, k := range r.Keywords {
		kws[i] = k.Keyword
	}
	return kws
}

// ParsedDocument is the output of a format parser.
type ParsedDocument struct {
	Title    string
	Content  string
	Metadata map[string]any
}

// FileFingerprint is the last known state of a path, used for change detection.
type FileFingerprint struct {
	DocumentID  string
	ContentHash string
	CreatedAt   time.Time
}

// Keyword is a weighted term extracted from a document.
// Keywords are unique per (document, keyword) pair.
type Keyword struct {
	Keyword   string  `json:"keyword"`
	Weight    float64 `json:"weight"`
	Frequency int     `json:"frequency"`
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	FileType   FileType
	CategoryID string
	Query      string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// TitleFromPath returns the base name of path without its extension.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
