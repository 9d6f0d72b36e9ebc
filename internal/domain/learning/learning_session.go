package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// LearningSession is one tutoring sitting for a user, optionally scoped to a topic.
type LearningSession struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_learning_session_user_status,priority:1" json:"user_id"`
	TopicName *string        `gorm:"column:topic_name;type:text" json:"topic_name,omitempty"`
	Status    string         `gorm:"column:status;type:text;not null;index:idx_learning_session_user_status,priority:2" json:"status"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	StartedAt  time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	EndedAt    *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`
	LastSeenAt time.Time  `gorm:"column:last_seen_at;not null;index" json:"last_seen_at"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningSession) TableName() string { return "learning_session" }

func (s *LearningSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SessionStatusActive
	}
	return nil
}

func (s *LearningSession) IsActive() bool {
	return s != nil && s.Status == SessionStatusActive
}
