package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tutorlog-backend/internal/domain"
)

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, topic *string, status string) *types.LearningSession {
	tb.Helper()
	now := time.Now().UTC()
	s := &types.LearningSession{
		ID:         uuid.New(),
		UserID:     userID,
		TopicName:  topic,
		Status:     status,
		StartedAt:  now,
		LastSeenAt: now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedEvaluation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, evaluation string, errorType, topic *string, at time.Time) *types.EvaluationRecord {
	tb.Helper()
	r := &types.EvaluationRecord{
		ID:          uuid.New(),
		UserID:      userID,
		Evaluation:  evaluation,
		ErrorType:   errorType,
		TopicName:   topic,
		EvaluatedAt: at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed evaluation: %v", err)
	}
	return r
}

func PtrString(v string) *string { return &v }

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
