package mcp

import (
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Search runs hybrid queries. Required.
	Search driving.SearchService

	// Document reads documents, categories and answers questions. Optional;
	// document tools fail with ErrDocumentsUnavailable without it.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
