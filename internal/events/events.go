// Package events is an in-process pub/sub bus for scheduling events.
package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Event types published by the scheduler.
const (
	TypeScheduleSolved = "schedule.solved"
	TypeScheduleFailed = "schedule.failed"
	TypeStaffChanged   = "staff.changed"
	TypeBookingChanged = "booking.changed"
)

// Event is a lightweight domain event with a JSON payload.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Handler reacts to an event.
type Handler func(event Event) error

// Bus dispatches events to subscribers by type.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs subscribers synchronously and returns the first handler error.
// Every handler runs even if an earlier one fails.
func (b *Bus) Publish(event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var first error
	for _, handler := range handlers {
		if err := handler(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishJSON marshals payload and publishes it under eventType.
// A nil bus is a no-op.
func (b *Bus) PublishJSON(eventType string, payload any) error {
	if b == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.Publish(Event{Type: eventType, Payload: data})
}
