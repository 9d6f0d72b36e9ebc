package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvaluationRecord is a single graded interaction. Rows are append-only.
type EvaluationRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_evaluation_record_user_time,priority:1" json:"user_id"`
	SessionID *uuid.UUID `gorm:"type:uuid;column:session_id;index" json:"session_id,omitempty"`

	Evaluation string  `gorm:"column:evaluation;type:text;not null" json:"evaluation"`
	ErrorType  *string `gorm:"column:error_type;type:text" json:"error_type,omitempty"`
	TopicName  *string `gorm:"column:topic_name;type:text" json:"topic_name,omitempty"`

	EvaluatedAt time.Time `gorm:"column:evaluated_at;not null;index:idx_evaluation_record_user_time,priority:2" json:"evaluated_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (EvaluationRecord) TableName() string { return "evaluation_record" }

func (r *EvaluationRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.EvaluatedAt.IsZero() {
		r.EvaluatedAt = time.Now().UTC()
	}
	return nil
}
