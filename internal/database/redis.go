package database

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/inkwell-blog/inkwell/backend/internal/config"
)

// NewRedisClient returns nil when Redis is not configured or not reachable;
// callers fall back to an in-process cache in that case.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		log.Println("⚠️  Redis address not configured, using in-memory cache")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis (%s, DB %d) unreachable: %v, using in-memory cache", cfg.Addr, cfg.DB, err)
		rdb.Close()
		return nil
	}

	log.Printf("✅ Connected to Redis (%s, DB %d)", cfg.Addr, cfg.DB)
	return rdb
}
