package events

import (
	"context"
	"sync"
)

// Recorder is an in-process Publisher that keeps every event it is given
type Recorder struct {
	mu     sync.Mutex
	events []*Event
	err    error
}

// NewRecorder creates a Recorder. A non-nil err is returned from every Publish.
func NewRecorder(err error) *Recorder {
	return &Recorder{err: err}
}

// Publish records the event
func (r *Recorder) Publish(ctx context.Context, event *Event) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Event, len(r.events))
	copy(out, r.events)
	return out
}
