package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/tutorlog-backend/internal/data/repos"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

type Repos struct {
	LearningSession  repos.LearningSessionRepo
	EvaluationRecord repos.EvaluationRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		LearningSession:  repos.NewLearningSessionRepo(db, log),
		EvaluationRecord: repos.NewEvaluationRecordRepo(db, log),
	}
}
