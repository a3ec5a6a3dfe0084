package core

import (
	"fmt"
	"time"
)

// Challenge is an issued authentication challenge. The message is never
// stored; it is recomputed from the server name and nonce at verification
// time, so any divergence surfaces as a signature mismatch.
type Challenge struct {
	Nonce     string    // Random single-use nonce (64 lowercase hex chars)
	Message   string    // Human-readable text the wallet must sign
	ExpiresIn int64     // Seconds until the nonce expires
	IssuedAt  time.Time // When the nonce was created
}

// SignMessage renders the challenge message for a server name and nonce.
// Issuance and verification both go through this function; the rendering
// must stay byte-for-byte identical between the two call sites.
//
// The text tells the user that signing is free and has no on-chain effect,
// so the wallet prompt is self-explanatory.
func SignMessage(serverName, nonce string) string {
	return fmt.Sprintf(
		"Sign in to %s\n\nNonce: %s\n\nThis signature will not trigger a blockchain transaction or cost any fees.",
		serverName, nonce,
	)
}
