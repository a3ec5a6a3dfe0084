// Package tokenizer validates login tokens issued by an external identity
// provider sharing a secret with this service.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// JWTTokenizer implements ports.Tokenizer using HMAC-signed JWTs.
type JWTTokenizer struct {
	secret []byte
}

// NewJWTTokenizer creates a tokenizer that validates tokens with secret.
func NewJWTTokenizer(secret []byte) *JWTTokenizer {
	return &JWTTokenizer{secret: secret}
}

// LocalpartFromToken verifies the token signature and expiry and returns
// the lowercased subject claim.
func (j *JWTTokenizer) LocalpartFromToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", core.ErrInvalidToken)
	}
	if !token.Valid {
		return "", core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", core.ErrInvalidToken
	}

	return strings.ToLower(claims.Subject), nil
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)
