package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrMissingScanOrchestrator is returned when RunScan has no orchestrator.
var ErrMissingScanOrchestrator = errors.New("tui: scan orchestrator is required")
