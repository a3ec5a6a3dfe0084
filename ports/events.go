package ports

import "context"

// EventPublisher notifies other services about account lifecycle events.
type EventPublisher interface {
	PublishRegistered(ctx context.Context, userID, displayLabel string) error
	PublishLoggedIn(ctx context.Context, userID, deviceID string) error
	PublishLoggedOut(ctx context.Context, userID, deviceID string) error
}
