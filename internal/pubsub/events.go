// Package pubsub provides a generic publish/subscribe event system used to fan
// command lifecycle and log events out to independent consumers.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// Generic events.
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"

	// Command lifecycle events published by the coordinator.
	StartedEvent    EventType = "started"
	SupersededEvent EventType = "superseded"
	CompletedEvent  EventType = "completed"
	FailedEvent     EventType = "failed"
	CancelledEvent  EventType = "cancelled"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// Consume delivers every event on ch to fn until ctx is done or ch is closed.
// It blocks; run it in its own goroutine.
func Consume[T any](ctx context.Context, ch <-chan Event[T], fn func(Event[T])) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			fn(event)
		}
	}
}
