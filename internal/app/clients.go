package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tutorlog-backend/internal/data/cache"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

type Clients struct {
	Redis        *goredis.Client
	SummaryCache cache.SummaryCache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is optional; without it summaries are computed on every read.
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set, summary cache disabled")
		return Clients{SummaryCache: cache.NewNoopSummaryCache()}, nil
	}
	rdb, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	summaryCache, err := cache.NewRedisSummaryCache(log, rdb, cfg.Redis.SummaryTTL)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init summary cache: %w", err)
	}
	return Clients{Redis: rdb, SummaryCache: summaryCache}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
