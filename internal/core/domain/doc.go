// Package domain defines the core business entities for docsift.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested local file with extracted text and metadata
//   - Category: An entry in the fixed topic taxonomy
//   - Keyword: A weighted term extracted from a document
//   - ScanSession: One run of the scan orchestrator over a root path
//   - VectorEntry: A document embedding held by the vector store
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
