package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/tutorlog-backend/internal/data/cache"
	"github.com/yungbote/tutorlog-backend/internal/data/repos"
	types "github.com/yungbote/tutorlog-backend/internal/domain"
	"github.com/yungbote/tutorlog-backend/internal/modules/learning/evaluation"
	"github.com/yungbote/tutorlog-backend/internal/observability"
	"github.com/yungbote/tutorlog-backend/internal/platform/apierr"
	"github.com/yungbote/tutorlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutorlog-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/tutorlog-backend/internal/services")

type RecordEvaluationInput struct {
	Evaluation  string     `json:"evaluation" validate:"required,oneof=correct partial incorrect"`
	ErrorType   *string    `json:"error_type" validate:"omitempty,max=100"`
	TopicName   *string    `json:"topic_name" validate:"omitempty,max=200"`
	SessionID   *uuid.UUID `json:"session_id"`
	EvaluatedAt *time.Time `json:"evaluated_at"`
}

type EvaluationService interface {
	Record(dbc dbctx.Context, userID uuid.UUID, in RecordEvaluationInput) (*types.EvaluationRecord, error)
	// Summary aggregates the caller's most recent evaluations.
	Summary(dbc dbctx.Context, userID uuid.UUID) (*evaluation.Summary, error)
}

type evaluationService struct {
	db          *gorm.DB
	log         *logger.Logger
	records     repos.EvaluationRecordRepo
	sessions    repos.LearningSessionRepo
	cache       cache.SummaryCache
	metrics     *observability.Metrics
	maxFutureAt time.Duration
}

func NewEvaluationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	records repos.EvaluationRecordRepo,
	sessions repos.LearningSessionRepo,
	summaryCache cache.SummaryCache,
	metrics *observability.Metrics,
) EvaluationService {
	if summaryCache == nil {
		summaryCache = cache.NewNoopSummaryCache()
	}
	return &evaluationService{
		db:          db,
		log:         baseLog.With("service", "EvaluationService"),
		records:     records,
		sessions:    sessions,
		cache:       summaryCache,
		metrics:     metrics,
		maxFutureAt: 5 * time.Minute,
	}
}

func (s *evaluationService) Record(dbc dbctx.Context, userID uuid.UUID, in RecordEvaluationInput) (*types.EvaluationRecord, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized(errors.New("missing user"))
	}
	if err := validate.Struct(in); err != nil {
		return nil, apierr.BadRequest("invalid_request", err)
	}

	now := time.Now().UTC()
	evaluatedAt := now
	if in.EvaluatedAt != nil && !in.EvaluatedAt.IsZero() {
		evaluatedAt = in.EvaluatedAt.UTC()
		if evaluatedAt.After(now.Add(s.maxFutureAt)) {
			return nil, apierr.BadRequest("invalid_request", errors.New("evaluated_at is in the future"))
		}
	}

	if in.SessionID != nil && *in.SessionID == uuid.Nil {
		in.SessionID = nil
	}

	var rec *types.EvaluationRecord
	err := dbctx.Transaction(dbc, s.db, func(inner dbctx.Context) error {
		if in.SessionID != nil {
			session, err := s.sessions.GetByID(inner, *in.SessionID)
			if err != nil {
				return fmt.Errorf("lookup session: %w", err)
			}
			if session == nil || session.UserID != userID {
				return errSessionNotFound
			}
		}
		row, err := s.records.Create(inner, &types.EvaluationRecord{
			UserID:      userID,
			SessionID:   in.SessionID,
			Evaluation:  in.Evaluation,
			ErrorType:   normalizeLabel(in.ErrorType),
			TopicName:   normalizeLabel(in.TopicName),
			EvaluatedAt: evaluatedAt,
		})
		if err != nil {
			return fmt.Errorf("create evaluation: %w", err)
		}
		rec = row
		inner.AfterCommit(func() { s.invalidateSummary(ctxutil.Default(dbc.Ctx), userID) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncEvaluation(rec.Evaluation)
	return rec, nil
}

func (s *evaluationService) invalidateSummary(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("summary cache invalidate failed", "user_id", userID, "error", err)
	}
}

func (s *evaluationService) Summary(dbc dbctx.Context, userID uuid.UUID) (*evaluation.Summary, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized(errors.New("missing user"))
	}
	ctx, span := tracer.Start(ctxutil.Default(dbc.Ctx), "EvaluationService.Summary")
	defer span.End()
	dbc.Ctx = ctx

	// The generation is read before the rows so a concurrent write moves any
	// summary stored below out of reach.
	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		s.log.Warn("summary cache generation read failed", "user_id", userID, "error", genErr)
	} else if cached, ok, err := s.cache.Get(ctx, userID, gen); err != nil {
		s.log.Warn("summary cache read failed", "user_id", userID, "error", err)
	} else if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.metrics.IncSummaryHit()
		return cached, nil
	}

	rows, err := s.records.ListRecentByUser(dbc, userID, evaluation.MaxRecords)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load evaluations: %w", err)
	}
	summary := evaluation.Summarize(lo.Map(rows, func(r *types.EvaluationRecord, _ int) evaluation.Record {
		return evaluation.Record{
			Evaluation:  r.Evaluation,
			ErrorType:   r.ErrorType,
			TopicName:   r.TopicName,
			EvaluatedAt: r.EvaluatedAt,
		}
	}))
	span.SetAttributes(
		attribute.Bool("cache.hit", false),
		attribute.Int("evaluation.records", len(rows)),
	)

	if genErr == nil {
		if err := s.cache.Set(ctx, userID, gen, summary); err != nil {
			s.log.Warn("summary cache write failed", "user_id", userID, "error", err)
		}
	}
	s.metrics.ObserveSummaryMiss(len(rows))
	return &summary, nil
}
