package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvServerName, "chat.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "chat.example.com", cfg.ServerName)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.True(t, cfg.AllowWalletLogin)
	assert.Equal(t, 5*time.Minute, cfg.NonceTTL)
	assert.Equal(t, 10_000, cfg.NonceCapacity)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvServerName, "chat.example.com")
	t.Setenv(EnvAllowWalletLogin, "false")
	t.Setenv(EnvNonceTTLSec, "60")
	t.Setenv(EnvNonceCapacity, "100")
	t.Setenv(EnvAppserviceTokens, "tok1:bridge_, tok2")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.AllowWalletLogin)
	assert.Equal(t, time.Minute, cfg.NonceTTL)
	assert.Equal(t, 100, cfg.NonceCapacity)
	assert.Equal(t, []string{"tok1:bridge_", "tok2"}, cfg.AppserviceTokens)
}

func TestValidate(t *testing.T) {
	valid := Config{
		ServerName:    "chat.example.com",
		ListenAddr:    ":9000",
		NonceTTL:      time.Minute,
		NonceCapacity: 10,
		DBPath:        "test.db",
	}
	require.NoError(t, valid.Validate())

	missingName := valid
	missingName.ServerName = ""
	assert.Error(t, missingName.Validate())

	badTTL := valid
	badTTL.NonceTTL = 0
	assert.Error(t, badTTL.Validate())

	badCapacity := valid
	badCapacity.NonceCapacity = -1
	assert.Error(t, badCapacity.Validate())
}

func TestLoadFromEnvRequiresServerName(t *testing.T) {
	t.Setenv(EnvServerName, "")
	_, err := LoadFromEnv()
	assert.Error(t, err)
}
