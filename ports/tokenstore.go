package ports

import (
	"context"
	"time"
)

// TokenStore tracks revoked access tokens so that logout takes effect on
// every instance before the account store catches up.
type TokenStore interface {
	InvalidateToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenInvalidated(ctx context.Context, token string) (bool, error)
}
