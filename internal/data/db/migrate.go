package db

import (
	"fmt"

	types "github.com/yungbote/tutorlog-backend/internal/domain"
	"gorm.io/gorm"
)

const ActiveSessionIndex = "uq_learning_session_active_topic"

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.LearningSession{},
		&types.EvaluationRecord{},
	); err != nil {
		return err
	}
	return ensureActiveSessionIndex(db)
}

// ensureActiveSessionIndex allows one active session per user and topic.
// Older duplicates are completed first so the index can be built.
func ensureActiveSessionIndex(db *gorm.DB) error {
	if db.Migrator().HasIndex(&types.LearningSession{}, ActiveSessionIndex) {
		return nil
	}
	if err := db.Exec(`
UPDATE learning_session SET status = ?, ended_at = last_seen_at
WHERE status = ? AND deleted_at IS NULL AND EXISTS (
	SELECT 1 FROM learning_session newer
	WHERE newer.user_id = learning_session.user_id
	  AND COALESCE(newer.topic_name, '') = COALESCE(learning_session.topic_name, '')
	  AND newer.status = ? AND newer.deleted_at IS NULL
	  AND (newer.last_seen_at > learning_session.last_seen_at
	    OR (newer.last_seen_at = learning_session.last_seen_at AND newer.id > learning_session.id))
)`, types.SessionStatusCompleted, types.SessionStatusActive, types.SessionStatusActive).Error; err != nil {
		return fmt.Errorf("complete duplicate active sessions: %w", err)
	}
	if err := db.Exec(fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS %s ON learning_session (user_id, (COALESCE(topic_name, ''))) WHERE status = '%s' AND deleted_at IS NULL`,
		ActiveSessionIndex, types.SessionStatusActive,
	)).Error; err != nil {
		return fmt.Errorf("create %s: %w", ActiveSessionIndex, err)
	}
	return nil
}
