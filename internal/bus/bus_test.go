package bus

import (
	"sync"
	"testing"
	"time"
)

func TestPublishSyncDelivers(t *testing.T) {
	b := NewEventBus()

	var mu sync.Mutex
	var got []string
	b.Subscribe(EventTypeTranscript, func(e Event) {
		mu.Lock()
		got = append(got, e.Data["text"].(string))
		mu.Unlock()
	})

	b.PublishSync(Event{Type: EventTypeTranscript, Data: map[string]any{"text": "hello"}})

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("got %v, want [hello]", got)
	}
}

func TestPublishAsync(t *testing.T) {
	b := NewEventBus()

	done := make(chan struct{})
	b.Subscribe(EventTypeReply, func(Event) { close(done) })

	b.Publish(Event{Type: EventTypeReply})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async handler never ran")
	}
}

func TestSubscribeMultiple(t *testing.T) {
	b := NewEventBus()

	var mu sync.Mutex
	count := 0
	b.SubscribeMultiple([]EventType{EventTypeTimerCreated, EventTypeTimerCancelled}, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	b.PublishSync(Event{Type: EventTypeTimerCreated})
	b.PublishSync(Event{Type: EventTypeTimerCancelled})
	b.PublishSync(Event{Type: EventTypeTimerDisplay}) // not subscribed

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestClear(t *testing.T) {
	b := NewEventBus()

	fired := false
	b.Subscribe(EventTypeNotify, func(Event) { fired = true })
	b.Clear()
	b.PublishSync(Event{Type: EventTypeNotify})

	if fired {
		t.Error("handler fired after Clear")
	}
}
