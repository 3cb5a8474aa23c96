package domain

import "time"

// SearchMode selects the retrieval legs used by a query.
type SearchMode string

// Search modes.
const (
	SearchModeFullText SearchMode = "fulltext"
	SearchModeSemantic SearchMode = "semantic"
	SearchModeHybrid   SearchMode = "hybrid"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeFullText, SearchModeSemantic, SearchModeHybrid:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Sort keys accepted by search and document listings.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
	SortTitle     = "title"
)

// SearchQuery is a user search request.
// Categories and FileTypes accept loose user-facing values.
type SearchQuery struct {
	Query      string     `json:"query"`
	Mode       SearchMode `json:"mode"`
	Categories []string   `json:"categories,omitempty"`
	FileTypes  []string   `json:"fileTypes,omitempty"`
	DateFrom   *time.Time `json:"dateFrom,omitempty"`
	DateTo     *time.Time `json:"dateTo,omitempty"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	SortBy     string     `json:"sortBy,omitempty"`
	SortOrder  string     `json:"sortOrder,omitempty"`
}

// Highlight is the tagged-match markup for one field, plus the matched
// substrings extracted from it.
type Highlight struct {
	Field   string   `json:"field"`
	Snippet string   `json:"snippet"`
	Matches []string `json:"matches"`
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	FilePath      string      `json:"filePath"`
	FileType      FileType    `json:"fileType"`
	Summary       string      `json:"summary,omitempty"`
	Snippet       string      `json:"snippet,omitempty"`
	Categories    []string    `json:"categories,omitempty"`
	CategoryNames []string    `json:"categoryNames,omitempty"`
	Keywords      []string    `json:"keywords,omitempty"`
	FileSize      int64       `json:"fileSize"`
	CreatedAt     time.Time   `json:"createdAt"`
	ModifiedAt    time.Time   `json:"modifiedAt"`
	Score         float64     `json:"score"`
	FullTextScore float64     `json:"fullTextScore"`
	SemanticScore float64     `json:"semanticScore"`
	Highlights    []Highlight `json:"highlights,omitempty"`
}

// SearchResponse is a page of ranked results.
type SearchResponse struct {
	Results        []SearchResult `json:"results"`
	Total          int            `json:"total"`
	Page           int            `json:"page"`
	Limit          int            `json:"limit"`
	TotalPages     int            `json:"totalPages"`
	Query          string         `json:"query"`
	Mode           SearchMode     `json:"mode"`
	Degraded       bool           `json:"degraded"`
	ProcessingTime time.Duration  `json:"processingTime"`
}

// Suggestion is a query completion candidate.
type Suggestion struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}
