package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/tutorlog-backend/internal/data/repos"
	types "github.com/yungbote/tutorlog-backend/internal/domain"
	"github.com/yungbote/tutorlog-backend/internal/observability"
	"github.com/yungbote/tutorlog-backend/internal/platform/apierr"
	"github.com/yungbote/tutorlog-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errSessionNotFound = apierr.NotFound("session_not_found", errors.New("session not found"))

type StartSessionInput struct {
	TopicName *string         `json:"topic_name" validate:"omitempty,max=200"`
	Metadata  json.RawMessage `json:"metadata"`
	// ForceNew completes the current active session for the topic and starts another.
	ForceNew bool `json:"force_new"`
}

type LearningSessionService interface {
	// Start resumes the caller's active session for the topic or creates one.
	// created reports whether a new row was inserted.
	Start(dbc dbctx.Context, userID uuid.UUID, in StartSessionInput) (session *types.LearningSession, created bool, err error)
	Get(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.LearningSession, error)
	List(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.LearningSession, error)
	End(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.LearningSession, error)
}

type learningSessionService struct {
	db      *gorm.DB
	log     *logger.Logger
	repo    repos.LearningSessionRepo
	metrics *observability.Metrics
}

func NewLearningSessionService(db *gorm.DB, baseLog *logger.Logger, repo repos.LearningSessionRepo, metrics *observability.Metrics) LearningSessionService {
	return &learningSessionService{
		db:      db,
		log:     baseLog.With("service", "LearningSessionService"),
		repo:    repo,
		metrics: metrics,
	}
}

func (s *learningSessionService) Start(dbc dbctx.Context, userID uuid.UUID, in StartSessionInput) (*types.LearningSession, bool, error) {
	if userID == uuid.Nil {
		return nil, false, apierr.Unauthorized(errors.New("missing user"))
	}
	if err := validate.Struct(in); err != nil {
		return nil, false, apierr.BadRequest("invalid_request", err)
	}
	topic := normalizeLabel(in.TopicName)
	metadata, err := normalizeMetadata(in.Metadata)
	if err != nil {
		return nil, false, apierr.BadRequest("invalid_metadata", err)
	}

	var (
		out     *types.LearningSession
		created bool
	)
	start := func(inner dbctx.Context) error {
		now := time.Now().UTC()
		if in.ForceNew {
			if _, err := s.repo.CompleteActiveByUser(inner, userID, topic, now); err != nil {
				return fmt.Errorf("complete active session: %w", err)
			}
		} else {
			existing, err := s.repo.GetActiveByUser(inner, userID, topic)
			if err != nil {
				return fmt.Errorf("lookup active session: %w", err)
			}
			if existing != nil {
				if err := s.repo.UpdateFields(inner, existing.ID, map[string]any{"last_seen_at": now}); err != nil {
					return fmt.Errorf("touch session: %w", err)
				}
				existing.LastSeenAt = now
				out, created = existing, false
				return nil
			}
		}
		row, err := s.repo.Create(inner, &types.LearningSession{
			UserID:    userID,
			TopicName: topic,
			Status:    types.SessionStatusActive,
			Metadata:  metadata,
		})
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		out, created = row, true
		return nil
	}

	err = dbctx.Transaction(dbc, s.db, start)
	// A concurrent start won the active-session index. Retrying resumes its session,
	// or completes it again under ForceNew.
	if errors.Is(err, gorm.ErrDuplicatedKey) && dbc.Tx == nil {
		s.log.Debug("concurrent session start, resuming", "user_id", userID)
		err = dbctx.Transaction(dbc, s.db, start)
	}
	if err != nil {
		s.log.Warn("Start session failed", "user_id", userID, "error", err)
		return nil, false, err
	}
	s.metrics.IncSessionStart(created)
	s.log.Debug("session started", "user_id", userID, "session_id", out.ID, "created", created)
	return out, created, nil
}

func (s *learningSessionService) Get(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.LearningSession, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized(errors.New("missing user"))
	}
	row, err := s.repo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	// sessions owned by someone else are reported as missing
	if row == nil || row.UserID != userID {
		return nil, errSessionNotFound
	}
	return row, nil
}

func (s *learningSessionService) List(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.LearningSession, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized(errors.New("missing user"))
	}
	rows, err := s.repo.ListByUser(dbc, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return rows, nil
}

func (s *learningSessionService) End(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.LearningSession, error) {
	row, err := s.Get(dbc, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !row.IsActive() {
		return row, nil
	}
	now := time.Now().UTC()
	if err := s.repo.UpdateFields(dbc, row.ID, map[string]any{
		"status":       types.SessionStatusCompleted,
		"ended_at":     now,
		"last_seen_at": now,
	}); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	row.Status = types.SessionStatusCompleted
	row.EndedAt = &now
	row.LastSeenAt = now
	return row, nil
}

func normalizeLabel(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// normalizeMetadata accepts an absent/null value or a JSON object.
func normalizeMetadata(raw json.RawMessage) (datatypes.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("metadata must be a JSON object")
	}
	compact, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(compact), nil
}
