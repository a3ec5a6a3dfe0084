package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/layer-3/rangda/ports"
)

// Topics for account lifecycle events.
const (
	TopicRegistered = "auth.registered"
	TopicLoggedIn   = "auth.logged_in"
	TopicLoggedOut  = "auth.logged_out"
)

// AccountEvent is the payload published on every topic.
type AccountEvent struct {
	UserID       string `json:"user_id"`
	DisplayLabel string `json:"display_label,omitempty"`
	DeviceID     string `json:"device_id,omitempty"`
}

// WatermillPublisher implements ports.EventPublisher using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) publish(topic string, event AccountEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// PublishRegistered announces a newly created account.
func (p *WatermillPublisher) PublishRegistered(ctx context.Context, userID, displayLabel string) error {
	return p.publish(TopicRegistered, AccountEvent{UserID: userID, DisplayLabel: displayLabel})
}

// PublishLoggedIn announces a new device session.
func (p *WatermillPublisher) PublishLoggedIn(ctx context.Context, userID, deviceID string) error {
	return p.publish(TopicLoggedIn, AccountEvent{UserID: userID, DeviceID: deviceID})
}

// PublishLoggedOut announces a removed device session.
func (p *WatermillPublisher) PublishLoggedOut(ctx context.Context, userID, deviceID string) error {
	return p.publish(TopicLoggedOut, AccountEvent{UserID: userID, DeviceID: deviceID})
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)
