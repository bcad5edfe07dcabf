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
//   - VectorStore: Catalog vectors and article metadata (dataset files)
//   - ApproximateIndex: Nearest-neighbour structure built over a VectorStore
//   - QuerySession: Read-only query handle derived from an ApproximateIndex
//   - EmbeddingService: Maps a title into the catalog's vector space
//   - KeyValueStore: Durable string-keyed storage for visit history
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Encyclopedia: Article search and summaries. Without it only direct
//     title recommendations are available.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
