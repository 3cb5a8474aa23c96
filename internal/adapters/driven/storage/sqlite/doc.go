// Package sqlite is the system of record for docsift, built on
// modernc.org/sqlite (pure Go, no CGO).
//
// One database connection backs three stores:
//
//   - DocumentStore: documents with their category assignments and keywords
//   - CategoryStore: the fixed topic catalog and per-category counts
//   - ScanStore: scan session history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.docsift/data/docsift.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode with
// a busy timeout, and foreign keys are enforced so deleting a document
// cascades to its assignments and keywords.
package sqlite
