// Package history keeps the most recent classification results.
package history

import (
	"context"
	"sync"
	"time"

	"emotion-panel/store"
)

// Capacity is the number of entries kept.
const Capacity = 3

// TimeLayout formats entry timestamps as local wall-clock time.
const TimeLayout = "15:04:05"

// Entry is one recorded classification.
type Entry struct {
	Label     string `json:"label"`
	Timestamp string `json:"timestamp"`
}

// Ring is a newest-first list of at most Capacity entries.
type Ring struct {
	mu    sync.Mutex
	store store.Store
	now   func() time.Time
}

// NewRing returns a ring over s. A nil clock uses time.Now.
func NewRing(s store.Store, now func() time.Time) *Ring {
	if now == nil {
		now = time.Now
	}
	return &Ring{store: s, now: now}
}

// Record prepends label with the current time and drops the oldest entries
// beyond Capacity. Repeated labels are kept.
func (r *Ring) Record(ctx context.Context, label string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Label: label, Timestamp: r.now().Format(TimeLayout)}
	entries = append([]Entry{e}, entries...)
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	return e, store.SetJSON(ctx, r.store, store.KeyHistory, entries)
}

// List returns the entries, newest first.
func (r *Ring) List(ctx context.Context) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Replace stores entries as-is, trimmed to Capacity.
func (r *Ring) Replace(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return store.SetJSON(ctx, r.store, store.KeyHistory, entries)
}

// Clear empties the ring.
func (r *Ring) Clear(ctx context.Context) error {
	return r.Replace(ctx, nil)
}

func (r *Ring) load(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if _, err := store.GetJSON(ctx, r.store, store.KeyHistory, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
