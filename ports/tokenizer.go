package ports

// Tokenizer validates externally issued login tokens (the m.login.token
// method) and extracts the localpart they assert.
type Tokenizer interface {
	// LocalpartFromToken verifies the token and returns its subject, or
	// core.ErrInvalidToken.
	LocalpartFromToken(token string) (string, error)
}
