package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/tutorlog-backend/internal/observability"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
	"github.com/yungbote/tutorlog-backend/internal/services"
)

type Services struct {
	Auth            services.AuthService
	LearningSession services.LearningSessionService
	Evaluation      services.EvaluationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Auth:            services.NewAuthService(log, cfg.Auth.JWTSecretKey, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL),
		LearningSession: services.NewLearningSessionService(db, log, repos.LearningSession, metrics),
		Evaluation: services.NewEvaluationService(
			db,
			log,
			repos.EvaluationRecord,
			repos.LearningSession,
			clients.SummaryCache,
			metrics,
		),
	}
}
