package ports

import "time"

// NonceStore mints and consumes single-use challenge nonces. Implementations
// must make Consume atomic: for any value, at most one caller ever sees a
// nil error. Expiry is not checked here; callers compare the returned
// creation time against their TTL so that the store's only guarantee stays
// exactly-once consumption.
type NonceStore interface {
	// Generate mints a new nonce, records its creation time and returns it.
	Generate() (string, error)

	// Consume atomically removes value and returns its creation time, or
	// core.ErrNonceNotFound if it was never issued, already consumed, or
	// pruned. The nonce is gone afterwards regardless of what the caller
	// does with the result.
	Consume(value string) (time.Time, error)
}
