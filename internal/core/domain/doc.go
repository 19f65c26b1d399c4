// Package domain defines the core entities of the docintel retrieval pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document and Page: text read from a file in the corpus
//   - Chunk: a word-aligned window of a page, the unit of retrieval
//   - RetrievalResult: a chunk scored against a query
//   - Interaction, Metric, TestQuery: audit log records
//   - Settings: the explicit configuration value passed to every component
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
