// Package sqlite provides the SQLite audit log.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It records three append-only tables:
//
//   - chat_logs: every answered question with its retrieved chunks and citations
//   - test_queries: evaluation runs and whether they hit the expected topic
//   - system_metrics: free-form numeric measurements such as build timings
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at data/docintel.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
