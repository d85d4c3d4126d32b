package orchestrator

import (
	"testing"
	"time"

	"github.com/kharazdev/joke-factory/internal/types"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("job-1")

	bus.Publish(Event{JobID: "job-1", Results: []types.JobResult{{CharacterID: 1, Content: "ha"}}})

	select {
	case evt := <-ch:
		if evt.JobID != "job-1" || len(evt.Results) != 1 {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected event delivery")
	}
}

func TestPublishWithoutSubscriberDrops(t *testing.T) {
	bus := NewEventBus()
	// Must not block or panic.
	bus.Publish(Event{JobID: "nobody-home"})
}

func TestPublishDeliversOnce(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("job-1")

	bus.Publish(Event{JobID: "job-1"})
	bus.Publish(Event{JobID: "job-1"})

	<-ch
	select {
	case <-ch:
		t.Fatalf("expected exactly one delivery")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("job-1")
	bus.Unsubscribe("job-1")

	bus.Publish(Event{JobID: "job-1"})

	select {
	case <-ch:
		t.Fatalf("expected no delivery after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestResubscribeReplacesChannel(t *testing.T) {
	bus := NewEventBus()
	old := bus.Subscribe("job-1")
	fresh := bus.Subscribe("job-1")

	bus.Publish(Event{JobID: "job-1"})

	select {
	case <-fresh:
	case <-time.After(time.Second):
		t.Fatalf("expected delivery on the fresh channel")
	}
	select {
	case <-old:
		t.Fatalf("stale channel must not receive")
	case <-time.After(50 * time.Millisecond):
	}
}
