package driven

// ChangeNotifier reports changes to files in a watched directory.
type ChangeNotifier interface {
	// Changes delivers the path of each created, written, removed or renamed file.
	// The channel is closed when the notifier is closed.
	Changes() <-chan string

	// Errors delivers watcher failures. The channel is closed with Changes.
	Errors() <-chan error

	// Close stops watching.
	Close() error
}
