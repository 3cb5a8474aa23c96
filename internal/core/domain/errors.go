package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file extension with no parser.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnreadable indicates corrupt or undecodable file bytes.
	ErrUnreadable = errors.New("unreadable input")

	// ErrTimeout indicates a file exceeded the per-file processing ceiling.
	ErrTimeout = errors.New("processing timed out")

	// ErrScanInProgress indicates a scan is already running.
	ErrScanInProgress = errors.New("scan in progress")

	// ErrLLMUnavailable indicates the chat-completion service is not configured.
	// AI classification, summaries, Q&A and image description are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrSearchUnavailable indicates the remote full-text index is not reachable.
	// Search degrades to semantic-only.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrVectorIndexUnavailable indicates the vector store is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
