package events

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory. Err, when set, is returned from
// Publish after the event is recorded.
type Recorder struct {
	mu     sync.Mutex
	events []IntentionEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event IntentionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return r.Err
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []IntentionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]IntentionEvent, len(r.events))
	copy(out, r.events)
	return out
}
