// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvServerName       = "RANGDA_SERVER_NAME"
	EnvListenAddr       = "RANGDA_LISTEN_ADDR"
	EnvAllowWalletLogin = "RANGDA_ALLOW_WALLET_LOGIN"
	EnvNonceTTLSec      = "RANGDA_NONCE_TTL_SEC"
	EnvNonceCapacity    = "RANGDA_NONCE_CAPACITY"
	EnvDBPath           = "RANGDA_DB_PATH"
	EnvRedisURL         = "RANGDA_REDIS_URL"
	EnvJWTSecret        = "RANGDA_JWT_SECRET"
	EnvAppserviceTokens = "RANGDA_APPSERVICE_TOKENS"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	// ServerName is the identity rendered into challenge messages. Changing
	// it invalidates every outstanding challenge.
	ServerName string

	ListenAddr string

	// AllowWalletLogin gates the wallet-signature login capability.
	AllowWalletLogin bool

	NonceTTL      time.Duration
	NonceCapacity int

	DBPath   string
	RedisURL string

	// JWTSecret enables the token login method when non-empty.
	JWTSecret string

	// AppserviceTokens authorize application-service logins.
	AppserviceTokens []string
}

// LoadFromEnv loads and validates configuration from environment variables.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		ServerName:       strings.TrimSpace(os.Getenv(EnvServerName)),
		ListenAddr:       envOrDefault(EnvListenAddr, ":9000"),
		AllowWalletLogin: boolEnvOrDefault(EnvAllowWalletLogin, true),
		NonceTTL:         time.Duration(intEnvOrDefault(EnvNonceTTLSec, 300)) * time.Second,
		NonceCapacity:    intEnvOrDefault(EnvNonceCapacity, 10_000),
		DBPath:           envOrDefault(EnvDBPath, "rangda.db"),
		RedisURL:         envOrDefault(EnvRedisURL, "redis://localhost:6379/0"),
		JWTSecret:        strings.TrimSpace(os.Getenv(EnvJWTSecret)),
		AppserviceTokens: splitEnv(EnvAppserviceTokens),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c Config) Validate() error {
	if c.ServerName == "" {
		return fmt.Errorf("invalid %s: must not be empty", EnvServerName)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("invalid %s: must not be empty", EnvListenAddr)
	}
	if c.NonceTTL <= 0 {
		return fmt.Errorf("invalid %s: must be > 0", EnvNonceTTLSec)
	}
	if c.NonceCapacity <= 0 {
		return fmt.Errorf("invalid %s: must be > 0", EnvNonceCapacity)
	}
	if c.DBPath == "" {
		return fmt.Errorf("invalid %s: must not be empty", EnvDBPath)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnvOrDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolEnvOrDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
