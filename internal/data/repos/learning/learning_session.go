package learning

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tutorlog-backend/internal/domain"
	"github.com/yungbote/tutorlog-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

const (
	DefaultSessionListLimit = 20
	MaxSessionListLimit     = 100
)

type LearningSessionRepo interface {
	Create(dbc dbctx.Context, session *types.LearningSession) (*types.LearningSession, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningSession, error)
	// GetActiveByUser returns the newest active session for the user and topic
	// (nil topic matches sessions without a topic). Returns nil, nil when none exists.
	GetActiveByUser(dbc dbctx.Context, userID uuid.UUID, topicName *string) (*types.LearningSession, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.LearningSession, error)
	// CompleteActiveByUser ends the user's active sessions for the topic.
	CompleteActiveByUser(dbc dbctx.Context, userID uuid.UUID, topicName *string, endedAt time.Time) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type learningSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningSessionRepo(db *gorm.DB, baseLog *logger.Logger) LearningSessionRepo {
	return &learningSessionRepo{db: db, log: baseLog.With("repo", "LearningSessionRepo")}
}

func (r *learningSessionRepo) Create(dbc dbctx.Context, session *types.LearningSession) (*types.LearningSession, error) {
	if session == nil {
		return nil, errors.New("nil session")
	}
	now := time.Now().UTC()
	if session.StartedAt.IsZero() {
		session.StartedAt = now
	}
	if session.LastSeenAt.IsZero() {
		session.LastSeenAt = now
	}
	if err := dbc.DB(r.db).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *learningSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningSession, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*types.LearningSession
	if err := dbc.DB(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func activeForTopic(q *gorm.DB, userID uuid.UUID, topicName *string) *gorm.DB {
	q = q.Where("user_id = ? AND status = ?", userID, types.SessionStatusActive)
	if topicName != nil && strings.TrimSpace(*topicName) != "" {
		return q.Where("topic_name = ?", strings.TrimSpace(*topicName))
	}
	return q.Where("topic_name IS NULL")
}

func (r *learningSessionRepo) GetActiveByUser(dbc dbctx.Context, userID uuid.UUID, topicName *string) (*types.LearningSession, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	q := activeForTopic(dbc.DB(r.db), userID, topicName)
	var rows []*types.LearningSession
	if err := q.Order("last_seen_at DESC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *learningSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.LearningSession, error) {
	results := []*types.LearningSession{}
	if userID == uuid.Nil {
		return results, nil
	}
	if limit <= 0 {
		limit = DefaultSessionListLimit
	}
	if limit > MaxSessionListLimit {
		limit = MaxSessionListLimit
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learningSessionRepo) CompleteActiveByUser(dbc dbctx.Context, userID uuid.UUID, topicName *string, endedAt time.Time) (int64, error) {
	if userID == uuid.Nil {
		return 0, nil
	}
	endedAt = endedAt.UTC()
	res := activeForTopic(dbc.DB(r.db).Model(&types.LearningSession{}), userID, topicName).
		Updates(map[string]any{
			"status":       types.SessionStatusCompleted,
			"ended_at":     endedAt,
			"last_seen_at": endedAt,
			"updated_at":   endedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *learningSessionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]any{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.LearningSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}
