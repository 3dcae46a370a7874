package feed

import (
	"context"
	"encoding/json"
	"time"
)

// Event is a single row-level change delivered over a subscription.
// Payload carries the JSON document of the changed entity; consumers
// must treat it as a refresh trigger, not as an ordered delta.
type Event struct {
	Kind  string          `json:"kind"`  // e.g. "booking.requested", "booking.status", "trip.location"
	Topic string          `json:"topic"` // topic key the subscription is scoped to
	Body  json.RawMessage `json:"body"`
	At    time.Time       `json:"at"`
}

// Source opens a stream of events scoped to one topic key.
// The returned channel must be closed and all resources released
// when ctx is cancelled. A Source starts from "now" and never
// replays history.
type Source interface {
	Open(ctx context.Context) (<-chan Event, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (<-chan Event, error)

func (f SourceFunc) Open(ctx context.Context) (<-chan Event, error) {
	return f(ctx)
}
