package core

import "encoding/hex"

// PublicKeySize is the size of a raw ed25519 public key.
const PublicKeySize = 32

// SignatureSize is the size of a raw ed25519 signature.
const SignatureSize = 64

// Identity is the stable identity derived from a verified wallet key.
type Identity struct {
	CanonicalID  string // Lowercase 64-char hex of the raw public key
	DisplayLabel string // The base58 address exactly as the client sent it
}

// DeriveIdentity maps a raw public key and its textual address to an
// Identity. The canonical id is a direct re-encoding of the 32 key bytes,
// so distinct keys can never collide, and hex keeps it inside the host's
// identifier grammar (lowercase alphanumerics, fixed length).
func DeriveIdentity(rawKey []byte, address string) Identity {
	return Identity{
		CanonicalID:  hex.EncodeToString(rawKey),
		DisplayLabel: address,
	}
}
