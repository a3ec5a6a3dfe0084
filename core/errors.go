package core

import "errors"

var (
	ErrInvalidEncoding   = errors.New("invalid base58 encoding")
	ErrInvalidLength     = errors.New("decoded value has wrong length")
	ErrInvalidKey        = errors.New("invalid ed25519 public key")
	ErrNonceNotFound     = errors.New("nonce not found or already used")
	ErrNonceExpired      = errors.New("nonce has expired")
	ErrSignatureMismatch = errors.New("signature verification failed")
	ErrFeatureDisabled   = errors.New("wallet authentication is not enabled")

	ErrUnknownLoginType  = errors.New("unsupported login type")
	ErrBadCredentials    = errors.New("wrong username or password")
	ErrUserDeactivated   = errors.New("user has been deactivated")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidLocalpart  = errors.New("localpart is invalid")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenRevoked      = errors.New("token has been revoked")
	ErrMissingParam      = errors.New("missing required field")
	ErrNotInNamespace    = errors.New("user is not in appservice namespace")
	ErrMissingAppservice = errors.New("missing appservice token")
)
