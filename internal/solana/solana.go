// Package solana decodes base58-encoded wallet keys and signatures and
// verifies ed25519 signatures over challenge messages.
package solana

import (
	"crypto/ed25519"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"github.com/layer-3/rangda/core"
)

// DecodePublicKey decodes a base58 wallet address into a raw ed25519
// public key and checks that the bytes form a valid point on the curve.
func DecodePublicKey(address string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("decode address: %w", core.ErrInvalidEncoding)
	}
	if len(raw) != core.PublicKeySize {
		return nil, fmt.Errorf("address must decode to %d bytes: %w", core.PublicKeySize, core.ErrInvalidLength)
	}

	// Reject byte strings that do not decode to a curve point. A malformed
	// key would fail verification anyway, but catching it here lets
	// challenge issuance reject the address before the client signs.
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return nil, fmt.Errorf("address is not a valid public key: %w", core.ErrInvalidKey)
	}

	return ed25519.PublicKey(raw), nil
}

// DecodeSignature decodes a base58 signature into raw bytes.
func DecodeSignature(signature string) ([]byte, error) {
	raw, err := base58.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", core.ErrInvalidEncoding)
	}
	if len(raw) != core.SignatureSize {
		return nil, fmt.Errorf("signature must be exactly %d bytes: %w", core.SignatureSize, core.ErrInvalidLength)
	}
	return raw, nil
}

// Verify checks a base58 signature over message against a base58 address
// and returns the raw public key on success. Wrong key, tampered message,
// and structurally invalid signatures all collapse to ErrSignatureMismatch
// so the caller leaks nothing about which check failed.
func Verify(address, signature, message string) (ed25519.PublicKey, error) {
	key, err := DecodePublicKey(address)
	if err != nil {
		return nil, err
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return nil, err
	}

	if !ed25519.Verify(key, []byte(message), sig) {
		return nil, core.ErrSignatureMismatch
	}

	return key, nil
}
