package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsPublisher publishes events to JetStream as JSON.
// The event ID becomes the Nats-Msg-Id, so a retried publish within the stream's duplicate window is stored once.
type NatsPublisher struct {
	js jetstream.JetStream
}

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Subject(), err)
	}
	msg := nats.NewMsg(event.Subject())
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = data

	if _, err = p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(event.ID())); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}
