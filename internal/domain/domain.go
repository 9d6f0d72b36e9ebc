package domain

import (
	"github.com/yungbote/tutorlog-backend/internal/domain/learning"
)

const (
	SessionStatusActive    = learning.SessionStatusActive
	SessionStatusCompleted = learning.SessionStatusCompleted
)

type LearningSession = learning.LearningSession
type EvaluationRecord = learning.EvaluationRecord
