package learning

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tutorlog-backend/internal/domain"
	"github.com/yungbote/tutorlog-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

// MaxRecentEvaluations caps ListRecentByUser.
const MaxRecentEvaluations = 100

type EvaluationRecordRepo interface {
	Create(dbc dbctx.Context, rec *types.EvaluationRecord) (*types.EvaluationRecord, error)
	// ListRecentByUser returns at most limit records, most recent first.
	ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.EvaluationRecord, error)
}

type evaluationRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationRecordRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRecordRepo {
	return &evaluationRecordRepo{db: db, log: baseLog.With("repo", "EvaluationRecordRepo")}
}

func (r *evaluationRecordRepo) Create(dbc dbctx.Context, rec *types.EvaluationRecord) (*types.EvaluationRecord, error) {
	if rec == nil {
		return nil, errors.New("nil evaluation record")
	}
	if err := dbc.DB(r.db).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *evaluationRecordRepo) ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.EvaluationRecord, error) {
	results := []*types.EvaluationRecord{}
	if userID == uuid.Nil {
		return results, nil
	}
	if limit <= 0 || limit > MaxRecentEvaluations {
		limit = MaxRecentEvaluations
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("evaluated_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
