// Package messaging defines the events a service emits and how they reach a broker.
package messaging

import (
	"context"
)

// Event is a message with its routing subject.
type Event interface {
	Subject() string
	// ID identifies the event for broker-side deduplication. Equal IDs mean the same fact.
	ID() string
	Payload() ([]byte, error)
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
