package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignMessageIsDeterministic(t *testing.T) {
	a := SignMessage("chat.example.com", "abc123def456")
	b := SignMessage("chat.example.com", "abc123def456")
	assert.Equal(t, a, b)
}

func TestSignMessageBindsServerAndNonce(t *testing.T) {
	base := SignMessage("chat.example.com", "abc123")

	assert.NotEqual(t, base, SignMessage("evil.example.com", "abc123"))
	assert.NotEqual(t, base, SignMessage("chat.example.com", "abc124"))
}

func TestSignMessageContent(t *testing.T) {
	msg := SignMessage("chat.example.com", "deadbeef")

	assert.Equal(t,
		"Sign in to chat.example.com\n\nNonce: deadbeef\n\nThis signature will not trigger a blockchain transaction or cost any fees.",
		msg)

	// The prompt must tell the user that signing is free of side effects.
	assert.True(t, strings.Contains(msg, "will not trigger a blockchain transaction"))
}
