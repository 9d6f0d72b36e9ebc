package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/tutorlog-backend/internal/data/repos/learning"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

type LearningSessionRepo = learning.LearningSessionRepo
type EvaluationRecordRepo = learning.EvaluationRecordRepo

func NewLearningSessionRepo(db *gorm.DB, baseLog *logger.Logger) LearningSessionRepo {
	return learning.NewLearningSessionRepo(db, baseLog)
}

func NewEvaluationRecordRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRecordRepo {
	return learning.NewEvaluationRecordRepo(db, baseLog)
}
