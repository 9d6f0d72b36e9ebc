package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tutorlog-backend/internal/data/repos"
	"github.com/yungbote/tutorlog-backend/internal/data/repos/testutil"
	"github.com/yungbote/tutorlog-backend/internal/modules/learning/evaluation"
	"github.com/yungbote/tutorlog-backend/internal/observability"
	"github.com/yungbote/tutorlog-backend/internal/platform/dbctx"
)

type testEnv struct {
	db       *gorm.DB
	sessions repos.LearningSessionRepo
	records  repos.EvaluationRecordRepo
	metrics  *observability.Metrics
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return testEnv{
		db:       db,
		sessions: repos.NewLearningSessionRepo(db, log),
		records:  repos.NewEvaluationRecordRepo(db, log),
		metrics:  observability.NewMetrics(),
	}
}

func bg() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

type summaryKey struct {
	user uuid.UUID
	gen  int64
}

// memorySummaryCache is an in-process SummaryCache that counts calls.
type memorySummaryCache struct {
	mu          sync.Mutex
	gens        map[uuid.UUID]int64
	items       map[summaryKey]evaluation.Summary
	gets        int
	sets        int
	invalidates int
}

func newMemorySummaryCache() *memorySummaryCache {
	return &memorySummaryCache{
		gens:  map[uuid.UUID]int64{},
		items: map[summaryKey]evaluation.Summary{},
	}
}

func (c *memorySummaryCache) Generation(_ context.Context, userID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID], nil
}

func (c *memorySummaryCache) Get(_ context.Context, userID uuid.UUID, gen int64) (*evaluation.Summary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	s, ok := c.items[summaryKey{userID, gen}]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (c *memorySummaryCache) Set(_ context.Context, userID uuid.UUID, gen int64, s evaluation.Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.items[summaryKey{userID, gen}] = s
	return nil
}

func (c *memorySummaryCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidates++
	c.gens[userID]++
	return nil
}
