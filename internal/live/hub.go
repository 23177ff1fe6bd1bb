// Package live keeps an in-memory snapshot of a collection current and fans
// each new snapshot out to subscribers, such as the admin console's live
// catalog and feedback views.
package live

import (
	"context"
	"sync"
	"time"

	"sageset/web/internal/logger"
)

// Loader reads a full snapshot from the store.
type Loader[T any] func(ctx context.Context) (T, error)

// Hub holds the latest snapshot of a collection.
type Hub[T any] struct {
	load Loader[T]
	log  *logger.Logger

	mu      sync.RWMutex
	current T
	loaded  bool
	subs    map[chan T]struct{}
}

func NewHub[T any](load Loader[T], log *logger.Logger) *Hub[T] {
	return &Hub[T]{load: load, log: log, subs: make(map[chan T]struct{})}
}

// Run reloads the snapshot every time changes fires, until ctx ends or
// changes is closed. It loads once up front.
func (h *Hub[T]) Run(ctx context.Context, changes <-chan struct{}) error {
	h.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			h.Refresh(ctx)
		}
	}
}

// Refresh loads a new snapshot and publishes it. A failed load keeps the
// previous snapshot.
func (h *Hub[T]) Refresh(ctx context.Context) {
	snap, err := h.load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			h.log.Warn("Snapshot reload failed", "error", err)
		}
		return
	}

	h.mu.Lock()
	h.current = snap
	h.loaded = true
	for ch := range h.subs {
		// Replace an unread snapshot so slow readers only ever see the latest.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	h.mu.Unlock()
}

// Current returns the latest snapshot and whether one has been loaded.
func (h *Hub[T]) Current() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current, h.loaded
}

// Subscribe returns a channel that receives every new snapshot, starting with
// the current one if loaded. Call the returned func to unsubscribe.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)
	h.mu.Lock()
	if h.loaded {
		ch <- h.current
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Ticker emits a change signal every interval. It stands in for a change
// stream when the store cannot provide one.
func Ticker(ctx context.Context, interval time.Duration) <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch
}
