// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Extractor: Reads the pages of one document format
//   - ExtractorRegistry: Selects an extractor by file extension
//   - PostProcessor: Splits page text into chunks
//   - EmbeddingService: Turns chunk and query text into vectors
//   - VectorIndex: Persisted flat exact-search index of chunk vectors
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Live checks of provider settings
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Generator: Answer generation. Without it, ask/chat report the LLM as unavailable.
//   - AuditLog: Interaction and metric persistence. Without it, nothing is recorded.
//   - ChangeNotifier: Document directory changes, used only by watch mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
