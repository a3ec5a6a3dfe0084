package pwhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := Verify(encoded, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyWrongPassword(t *testing.T) {
	encoded, err := Hash("hunter2")
	require.NoError(t, err)

	ok, err := Verify(encoded, "hunter3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := Hash("same password")
	require.NoError(t, err)
	b, err := Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"not a hash",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage",
	} {
		_, err := Verify(encoded, "password")
		assert.Error(t, err, "input %q", encoded)
	}
}
