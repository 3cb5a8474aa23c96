// Package mcp provides an MCP (Model Context Protocol) server adapter for docsift.
// It lets AI assistants search the local corpus and read classified documents.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrDocumentsUnavailable is returned by document tools when no document
// service is configured.
var ErrDocumentsUnavailable = errors.New("mcp: document service not configured")
