package core

import (
	"context"
	"sync"
	"time"

	"assetledger/pkg/domain"
)

// RecordedEvent pairs a committed ledger event with its observation time.
type RecordedEvent struct {
	Kind       domain.EventKind `json:"kind"`
	Event      domain.Event     `json:"event"`
	ObservedAt time.Time        `json:"observed_at"`
}

// EventRecorder retains the most recent committed events in a bounded ring.
// It fulfills domain.EventSink for tests and for the API's recent-events
// endpoint.
type EventRecorder struct {
	mu      sync.Mutex
	limit   int
	entries []RecordedEvent
}

const defaultEventLimit = 256

// NewEventRecorder constructs a recorder retaining up to limit events; a
// non-positive limit selects the default.
func NewEventRecorder(limit int) *EventRecorder {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	return &EventRecorder{limit: limit}
}

// Record implements domain.EventSink.
func (r *EventRecorder) Record(_ context.Context, ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, RecordedEvent{
		Kind:       ev.Kind(),
		Event:      ev,
		ObservedAt: time.Now().UTC(),
	})
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
}

// Events returns a copy of the retained events, oldest first.
func (r *EventRecorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedEvent, len(r.entries))
	copy(out, r.entries)
	return out
}
