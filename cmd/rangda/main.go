package main

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/rangda/adapters/events"
	"github.com/layer-3/rangda/adapters/store"
	"github.com/layer-3/rangda/adapters/tokenizer"
	"github.com/layer-3/rangda/config"
	"github.com/layer-3/rangda/ports"
	"github.com/layer-3/rangda/service"
	"github.com/layer-3/rangda/transport/http"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)

	logger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create Redis publisher: %v", err)
	}

	accounts, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open account store: %v", err)
	}
	defer accounts.Close() //nolint:errcheck

	nonces := store.NewNonceStore(
		store.WithNonceTTL(cfg.NonceTTL),
		store.WithNonceCapacity(cfg.NonceCapacity),
	)
	tokens := store.NewRedisTokenStore(redisClient)
	eventPub := events.NewWatermillPublisher(publisher)

	var jwtTokenizer ports.Tokenizer
	if cfg.JWTSecret != "" {
		jwtTokenizer = tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret))
	}

	authService := service.NewAuthService(
		service.Config{
			ServerName:       cfg.ServerName,
			NonceTTL:         cfg.NonceTTL,
			AllowWalletLogin: cfg.AllowWalletLogin,
			AppserviceTokens: cfg.AppserviceTokens,
		},
		nonces, accounts, tokens, jwtTokenizer, eventPub,
	)

	router := http.SetupRouter(authService, cfg.ServerName)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
