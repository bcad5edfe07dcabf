// Package domain defines the core business entities for wikirec.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ArticleMeta: Identifier and title of one catalog row
//   - Recommendation: A related article offered to the reader
//   - IndexConfig: Construction parameters for the approximate index
//   - History: A bounded, FIFO-evicting log of visited articles
//   - AppSettings: Resolved application configuration
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
