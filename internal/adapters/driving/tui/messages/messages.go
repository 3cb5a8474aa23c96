// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docsift/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the query input and results view.
	ViewSearch ViewType = iota
	// ViewDocument shows a single document record.
	ViewDocument
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDocument:
		return "document"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// SearchCompleted carries a page of search results back to the model.
type SearchCompleted struct {
	Response *domain.SearchResponse
	Err      error
}

// DocumentLoaded carries a full document record for the document view.
type DocumentLoaded struct {
	Record *domain.DocumentRecord
	Err    error
}

// DocumentRevealed reports the outcome of showing a file in the file manager.
type DocumentRevealed struct {
	ID  string
	Err error
}

// ScanProgressed carries a progress snapshot from a running scan.
type ScanProgressed struct {
	Progress domain.ScanProgress
}

// ScanFinished is sent once when the scan returns.
type ScanFinished struct {
	Session *domain.ScanSession
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
