package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
)

var ErrManagerClosed = errors.New("subscription manager is closed")

// Manager owns the live subscriptions of one session and guarantees
// at most one active subscription per topic key. Subscribing to a key
// that already has a subscription tears the old one down first, so a
// revisited screen never stacks duplicate listeners.
type Manager struct {
	mu     sync.Mutex
	subs   map[string]*subscription
	closed bool

	l logger.Logger
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(l logger.Logger) *Manager {
	return &Manager{
		subs: make(map[string]*subscription),
		l:    l,
	}
}

// Subscribe opens src and delivers its events to deliver until the
// subscription is replaced, unsubscribed, or the manager is closed.
// deliver runs on the subscription's own goroutine.
func (m *Manager) Subscribe(ctx context.Context, key string, src Source, deliver func(Event)) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	existing := m.subs[key]
	delete(m.subs, key)
	m.mu.Unlock()

	// Replace, never stack: the old listener must be fully stopped
	// before the new one starts, or events could be delivered twice.
	if existing != nil {
		m.l.Warn(wrap.WithAction(ctx, "feed_subscribe"),
			"replacing existing subscription",
			"topic_key", key,
		)
		existing.stop()
	}

	subCtx, cancel := context.WithCancel(ctx)
	events, err := src.Open(subCtx)
	if err != nil {
		cancel()
		return err
	}

	sub := &subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		close(sub.done)
		return ErrManagerClosed
	}
	// A concurrent Subscribe for the same key may have registered between
	// the two critical sections; its entry must be stopped, not leaked.
	raced := m.subs[key]
	m.subs[key] = sub
	m.mu.Unlock()

	if raced != nil {
		raced.stop()
	}

	go func() {
		defer close(sub.done)
		for ev := range events {
			deliver(ev)
		}
	}()

	return nil
}

// Unsubscribe cancels the subscription for key and waits for its
// delivery goroutine to finish. Calling it for an unknown key is a no-op.
func (m *Manager) Unsubscribe(key string) {
	m.mu.Lock()
	sub := m.subs[key]
	delete(m.subs, key)
	m.mu.Unlock()

	if sub != nil {
		sub.stop()
	}
}

// Active reports whether a subscription currently exists for key.
func (m *Manager) Active(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subs[key]
	return ok
}

// Len returns the number of live subscriptions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Close tears down every subscription and rejects further Subscribe calls.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	subs := make([]*subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.subs = make(map[string]*subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (s *subscription) stop() {
	s.cancel()
	<-s.done
}
