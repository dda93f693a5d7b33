package session

import (
	"context"
	"sync"
	"time"

	"github.com/existflow/kawai/internal/logger"
)

// Watcher re-runs Restore whenever another process changes the storage.
type Watcher struct {
	store        *Store
	pollInterval time.Duration
	lastVersion  int64
	stopCh       chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
}

// Watch starts polling storage every interval until ctx is done or Stop is called.
func (s *Store) Watch(ctx context.Context, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	w := &Watcher{
		store:        s,
		pollInterval: interval,
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}

	// Baseline, so the first tick does not restore for nothing.
	if v, err := s.storage.Version(ctx); err == nil {
		w.lastVersion = v
	}

	go w.pollLoop(ctx)
	return w
}

// pollLoop periodically checks the storage version
func (w *Watcher) pollLoop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) check(ctx context.Context) {
	v, err := w.store.storage.Version(ctx)
	if err != nil {
		w.store.log.Debug("session version check failed", logger.F("error", err))
		return
	}
	if v == w.lastVersion {
		return
	}
	// A failed read is retried on the next tick.
	if _, err := w.store.restore(ctx); err != nil {
		return
	}
	w.lastVersion = v
}

// Stop stops the watcher and waits for the loop to exit
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done
}

// Done is closed when the loop has exited
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}
