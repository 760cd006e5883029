package main

import (
	"context"
	"fmt"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ouhoy/rabatino-client/internal/auth"
	"github.com/ouhoy/rabatino-client/internal/config"
)

func setupSnapshots(cfg *config.Config) (auth.SnapshotStore, error) {
	if cfg.SessionRedisURL == "" {
		log.Printf("SESSION_REDIS_URL is empty; sessions are kept in memory")
		return auth.NewMemorySnapshots(cfg.SessionTTL()), nil
	}

	opt, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_REDIS_URL: %w", err)
	}
	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return auth.NewRedisSnapshots(redisClient, cfg.SessionTTL()), nil
}
