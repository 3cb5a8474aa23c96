// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Parser: Extracts text from a local file
//   - DocumentStore: Document, category assignment and keyword persistence
//   - CategoryStore: Category catalog persistence
//   - ScanStore: Scan session history
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FullTextIndex: Remote full-text index. Without it, search is semantic-only.
//   - VectorStore: Hashing vector store. Without it, search is full-text only.
//   - ChatClient: Chat-completion API. Without it, classification is rule-based,
//     summaries are truncations and images get a placeholder description.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or parser package
package driven
