package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure RebuildScheduler implements the interface.
var _ driving.Watcher = (*RebuildScheduler)(nil)

// DefaultDebounce is how long the document directory must stay quiet
// before a rebuild starts.
const DefaultDebounce = 2 * time.Second

// RebuildFunc receives the outcome of each rebuild.
type RebuildFunc func(report domain.BuildReport, err error)

// RebuildScheduler rebuilds the whole index after the documents directory changes.
// Bursts of changes collapse into one rebuild once the directory is quiet.
type RebuildScheduler struct {
	index    driving.IndexService
	notifier driven.ChangeNotifier
	debounce time.Duration
	onResult RebuildFunc

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRebuildScheduler creates a scheduler. A debounce below zero uses DefaultDebounce.
func NewRebuildScheduler(
	index driving.IndexService,
	notifier driven.ChangeNotifier,
	debounce time.Duration,
	onResult RebuildFunc,
) *RebuildScheduler {
	if debounce < 0 {
		debounce = DefaultDebounce
	}
	if onResult == nil {
		onResult = func(domain.BuildReport, error) {}
	}
	return &RebuildScheduler{
		index:    index,
		notifier: notifier,
		debounce: debounce,
		onResult: onResult,
	}
}

// Start runs the scheduler loop. It blocks until Stop is called, the
// context is cancelled, or the notifier closes. With initial set, the index
// is rebuilt once before waiting for changes.
func (s *RebuildScheduler) Start(ctx context.Context, initial bool) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	defer close(s.doneCh)

	if initial {
		s.rebuild(ctx)
	}
	return s.run(ctx)
}

// Stop ends the loop and waits for any rebuild in progress to finish.
func (s *RebuildScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	return nil
}

func (s *RebuildScheduler) run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var fire <-chan time.Time
	changes := s.notifier.Changes()
	errs := s.notifier.Errors()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("watch: %s changed", path)
			timer.Reset(s.debounce)
			fire = timer.C
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch: %v", err)
		case <-fire:
			fire = nil
			s.rebuild(ctx)
		}
	}
}

func (s *RebuildScheduler) rebuild(ctx context.Context) {
	logger.Info("watch: rebuilding index")
	report, err := s.index.Build(ctx)
	if err != nil {
		logger.Error("watch: rebuild failed: %v", err)
	}
	s.onResult(report, err)
}
