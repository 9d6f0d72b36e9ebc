package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tutorlog-backend/internal/modules/learning/evaluation"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

const (
	summaryKeyPrefix    = "evalsummary:"
	summaryGenKeyPrefix = "evalsummary:gen:"
	DefaultSummaryTTL   = 60 * time.Second
	summaryGenTTL       = 24 * time.Hour
)

// SummaryCache holds per-user evaluation summaries between writes.
//
// Entries are keyed by the user's generation. Readers take the generation
// before loading records and store under it; Invalidate advances it, so a
// summary computed from rows older than the last write is never served.
type SummaryCache interface {
	Generation(ctx context.Context, userID uuid.UUID) (int64, error)
	Get(ctx context.Context, userID uuid.UUID, gen int64) (*evaluation.Summary, bool, error)
	Set(ctx context.Context, userID uuid.UUID, gen int64, summary evaluation.Summary) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type noopSummaryCache struct{}

func NewNoopSummaryCache() SummaryCache { return noopSummaryCache{} }

func (noopSummaryCache) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (noopSummaryCache) Get(context.Context, uuid.UUID, int64) (*evaluation.Summary, bool, error) {
	return nil, false, nil
}
func (noopSummaryCache) Set(context.Context, uuid.UUID, int64, evaluation.Summary) error { return nil }
func (noopSummaryCache) Invalidate(context.Context, uuid.UUID) error                    { return nil }

type redisSummaryCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewRedisSummaryCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) (SummaryCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &redisSummaryCache{
		log: log.With("service", "RedisSummaryCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func summaryKey(userID uuid.UUID, gen int64) string {
	return summaryKeyPrefix + userID.String() + ":" + strconv.FormatInt(gen, 10)
}

func summaryGenKey(userID uuid.UUID) string {
	return summaryGenKeyPrefix + userID.String()
}

func (c *redisSummaryCache) Generation(ctx context.Context, userID uuid.UUID) (int64, error) {
	gen, err := c.rdb.Get(ctx, summaryGenKey(userID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get summary generation: %w", err)
	}
	return gen, nil
}

func (c *redisSummaryCache) Get(ctx context.Context, userID uuid.UUID, gen int64) (*evaluation.Summary, bool, error) {
	key := summaryKey(userID, gen)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get summary: %w", err)
	}
	var s evaluation.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		// drop the unreadable entry so the next read recomputes
		c.log.Warn("dropping unreadable cached summary", "user_id", userID, "error", err)
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}
	if s.ErrorPatterns == nil {
		s.ErrorPatterns = []evaluation.ErrorPattern{}
	}
	if s.RecentTopics == nil {
		s.RecentTopics = []string{}
	}
	return &s, true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, userID uuid.UUID, gen int64, summary evaluation.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, summaryKey(userID, gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set summary: %w", err)
	}
	return nil
}

// Invalidate bumps the generation. Entries under older generations are left
// to expire.
func (c *redisSummaryCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	key := summaryGenKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, max(summaryGenTTL, 2*c.ttl))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis bump summary generation: %w", err)
	}
	return nil
}
