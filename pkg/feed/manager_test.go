package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
)

// chanSource is a hand-fed Source for tests. Its stream closes when the
// subscription context is cancelled, like the rabbit-backed source does.
type chanSource struct {
	mu     sync.Mutex
	input  chan Event
	opened int
}

func newChanSource() *chanSource {
	return &chanSource{input: make(chan Event)}
}

func (s *chanSource) Open(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	s.opened++
	s.mu.Unlock()

	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.input:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *chanSource) emit(t *testing.T, ev Event) {
	t.Helper()
	select {
	case s.input <- ev:
	case <-time.After(time.Second):
		t.Fatalf("no subscriber consumed event %q", ev.Kind)
	}
}

func testManager() *Manager {
	return NewManager(logger.InitLogger("test", logger.LevelError))
}

func TestSubscribe_DeliversEvents(t *testing.T) {
	m := testManager()
	defer m.Close()

	src := newChanSource()
	got := make(chan Event, 1)

	if err := m.Subscribe(context.Background(), "booking:1", src, func(ev Event) { got <- ev }); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	src.emit(t, Event{Kind: "booking.status", Topic: "booking:1"})

	select {
	case ev := <-got:
		if ev.Topic != "booking:1" {
			t.Fatalf("wrong topic: %s", ev.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestSubscribe_ReplacesExisting(t *testing.T) {
	m := testManager()
	defer m.Close()

	src := newChanSource()

	var mu sync.Mutex
	deliveries := 0
	deliver := func(Event) {
		mu.Lock()
		deliveries++
		mu.Unlock()
	}

	for range 2 {
		if err := m.Subscribe(context.Background(), "route:7", src, deliver); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	}

	if n := m.Len(); n != 1 {
		t.Fatalf("expected exactly one live subscription, got %d", n)
	}
	if src.opened != 2 {
		t.Fatalf("source should have been opened twice, got %d", src.opened)
	}

	// Only the surviving subscription may consume this event.
	src.emit(t, Event{Kind: "booking.requested", Topic: "route:7"})

	// give a would-be duplicate listener time to show itself
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if deliveries != 1 {
		t.Fatalf("event delivered %d times, want 1", deliveries)
	}
}

// trackingSource counts how many of its streams are still alive, so a
// subscription that escaped the manager's bookkeeping shows up as a
// stream that Close never cancelled.
type trackingSource struct {
	mu   sync.Mutex
	live int
}

func (s *trackingSource) Open(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	s.live++
	s.mu.Unlock()

	out := make(chan Event)
	go func() {
		defer close(out)
		<-ctx.Done()
		s.mu.Lock()
		s.live--
		s.mu.Unlock()
	}()
	return out, nil
}

func (s *trackingSource) liveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

func TestSubscribe_ConcurrentSameKey(t *testing.T) {
	m := testManager()
	src := &trackingSource{}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Subscribe(context.Background(), "booking:1", src, func(Event) {}); err != nil {
				t.Errorf("subscribe failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := m.Len(); n != 1 {
		t.Fatalf("expected exactly one live subscription, got %d", n)
	}

	m.Close()

	// Every stream must be cancelled; a leftover means an overwritten
	// subscription kept running outside the manager's map.
	deadline := time.Now().Add(time.Second)
	for src.liveStreams() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%d streams still live after close", src.liveStreams())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	m := testManager()
	defer m.Close()

	src := newChanSource()
	if err := m.Subscribe(context.Background(), "trip:9", src, func(Event) {}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	m.Unsubscribe("trip:9")
	m.Unsubscribe("trip:9") // second call must be a no-op
	m.Unsubscribe("never-existed")

	if m.Active("trip:9") {
		t.Fatal("subscription still active after unsubscribe")
	}
}

func TestClose_TearsDownEverything(t *testing.T) {
	m := testManager()

	for _, key := range []string{"booking:1", "booking:2", "trip:3"} {
		if err := m.Subscribe(context.Background(), key, newChanSource(), func(Event) {}); err != nil {
			t.Fatalf("subscribe %s failed: %v", key, err)
		}
	}

	m.Close()

	if n := m.Len(); n != 0 {
		t.Fatalf("expected zero subscriptions after close, got %d", n)
	}

	if err := m.Subscribe(context.Background(), "booking:4", newChanSource(), func(Event) {}); err != ErrManagerClosed {
		t.Fatalf("expected ErrManagerClosed, got %v", err)
	}
}
