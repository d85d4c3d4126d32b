// Package orchestrator sequences the generation pipeline as tracked,
// fire-and-forget jobs.
package orchestrator

import (
	"sync"

	"github.com/kharazdev/joke-factory/internal/types"
)

// Event announces a finished job to whoever registered for its id.
type Event struct {
	JobID   string            `json:"jobId"`
	Results []types.JobResult `json:"results"`
}

// EventBus is a job-keyed broadcast point injected into both the job runner
// and the WebSocket layer. Semantics: register by job id, deliver once, then
// forget. Publishing without a subscriber drops the event; there is no ack
// and no retry.
type EventBus struct {
	mu   sync.Mutex
	subs map[string]chan Event
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string]chan Event)}
}

// Subscribe registers interest in one job id. A second subscription for the
// same id replaces the first.
func (b *EventBus) Subscribe(jobID string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, 1)
	b.subs[jobID] = ch
	return ch
}

// Unsubscribe drops the registration, e.g. when the client disconnects
// before the job finishes.
func (b *EventBus) Unsubscribe(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, jobID)
}

// Publish delivers the event to the job's subscriber, if any, and removes
// the subscription. Never blocks.
func (b *EventBus) Publish(evt Event) {
	b.mu.Lock()
	ch, ok := b.subs[evt.JobID]
	if ok {
		delete(b.subs, evt.JobID)
	}
	b.mu.Unlock()

	if !ok {
		return
	}
	select {
	case ch <- evt:
	default:
	}
}
