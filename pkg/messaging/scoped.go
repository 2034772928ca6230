package messaging

import "context"

// ScopedPublisher prefixes every event ID with a scope before handing the event to next.
// Used when event IDs are only unique within one process lifetime, e.g. over an in-memory store
// whose identities restart after every boot.
type ScopedPublisher struct {
	next  Publisher
	scope string
}

func NewScopedPublisher(next Publisher, scope string) *ScopedPublisher {
	return &ScopedPublisher{next: next, scope: scope}
}

func (p *ScopedPublisher) Publish(ctx context.Context, event Event) error {
	return p.next.Publish(ctx, scopedEvent{Event: event, scope: p.scope})
}

type scopedEvent struct {
	Event
	scope string
}

func (e scopedEvent) ID() string {
	return e.scope + ":" + e.Event.ID()
}
