// Package connectors holds the document sources docsift can ingest from.
// The only source is the local filesystem (package filesystem).
package connectors
