// Package watch reports changes to a documents directory using fsnotify.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Notifier implements the interface.
var _ driven.ChangeNotifier = (*Notifier)(nil)

// Filter decides whether a changed path is relevant.
type Filter func(path string) bool

// Notifier watches a single directory, non-recursively.
type Notifier struct {
	watcher *fsnotify.Watcher
	filter  Filter
	changes chan string
	errs    chan error

	closeOnce sync.Once
	done      chan struct{}
}

// New starts watching dir. A nil filter accepts every file.
func New(dir string, filter Filter) (*Notifier, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching %s: not a directory", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	if filter == nil {
		filter = func(string) bool { return true }
	}
	n := &Notifier{
		watcher: w,
		filter:  filter,
		changes: make(chan string, 16),
		errs:    make(chan error, 4),
		done:    make(chan struct{}),
	}
	go n.loop()
	return n, nil
}

// Changes delivers changed file paths.
func (n *Notifier) Changes() <-chan string {
	return n.changes
}

// Errors delivers watcher errors.
func (n *Notifier) Errors() <-chan error {
	return n.errs
}

// Close stops the watcher and closes both channels.
func (n *Notifier) Close() error {
	var err error
	n.closeOnce.Do(func() {
		close(n.done)
		err = n.watcher.Close()
	})
	return err
}

func (n *Notifier) loop() {
	defer close(n.changes)
	defer close(n.errs)

	for {
		select {
		case <-n.done:
			return
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			path, relevant := n.handleFsEvent(event)
			if !relevant {
				continue
			}
			select {
			case n.changes <- path:
			case <-n.done:
				return
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			select {
			case n.errs <- err:
			case <-n.done:
				return
			default:
			}
		}
	}
}

// handleFsEvent returns the event's path if it can affect the index.
// Permission changes, directories and hidden files are ignored.
func (n *Notifier) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return "", false
	}
	if !n.filter(event.Name) {
		return "", false
	}
	return event.Name, true
}
