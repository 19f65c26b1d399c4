package driving

import "context"

// Watcher keeps the index in step with the documents directory.
type Watcher interface {
	// Start blocks, rebuilding after changes, until Stop or ctx ends it.
	// With initial set the index is rebuilt once before waiting.
	Start(ctx context.Context, initial bool) error

	// Stop ends Start and waits for a rebuild in progress.
	Stop() error
}
