// Package pubsub provides a generic publish/subscribe event system.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent      EventType = "created"
	UpdatedEvent      EventType = "updated"
	DeletedEvent      EventType = "deleted"
	TransitionedEvent EventType = "transitioned"
	StaleEvent        EventType = "stale"
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

// DocumentEvent is the payload published when a document changes lifecycle
// state. PreviousState is empty for events that do not originate from a
// transition (e.g. document creation).
type DocumentEvent struct {
	DocumentID    string
	DocumentType  string
	PreviousState string
	State         string
}
