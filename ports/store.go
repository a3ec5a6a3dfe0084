package ports

import "context"

// AccountStore persists user accounts and their device sessions.
type AccountStore interface {
	UserExists(ctx context.Context, userID string) (bool, error)

	// CreateUser creates an account. passwordHash may be empty for
	// wallet-only accounts, which can then never log in with a password.
	CreateUser(ctx context.Context, userID, passwordHash string) error

	// PasswordHash returns the stored hash for userID, or
	// core.ErrUserNotFound. An empty hash marks a deactivated account.
	PasswordHash(ctx context.Context, userID string) (string, error)

	SetDisplayName(ctx context.Context, userID, displayName string) error

	DeviceExists(ctx context.Context, userID, deviceID string) (bool, error)
	CreateDevice(ctx context.Context, userID, deviceID, token, displayName string) error

	// SetDeviceToken replaces the access token of an existing device,
	// invalidating the previous one.
	SetDeviceToken(ctx context.Context, userID, deviceID, token string) error

	// UserByToken resolves an access token to its user and device, or
	// core.ErrInvalidToken.
	UserByToken(ctx context.Context, token string) (userID, deviceID string, err error)

	RemoveDevice(ctx context.Context, userID, deviceID string) error
	DeviceIDs(ctx context.Context, userID string) ([]string, error)

	Close() error
}
