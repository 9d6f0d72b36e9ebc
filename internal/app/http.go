package app

import (
	"context"

	"github.com/yungbote/tutorlog-backend/internal/data/db"
	"github.com/yungbote/tutorlog-backend/internal/http"
	httpH "github.com/yungbote/tutorlog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tutorlog-backend/internal/http/middleware"
	"github.com/yungbote/tutorlog-backend/internal/observability"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health          *httpH.HealthHandler
	LearningSession *httpH.LearningSessionHandler
	Evaluation      *httpH.EvaluationHandler
}

func wireHandlers(log *logger.Logger, services Services, dbs *db.Service, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	deps := map[string]httpH.PingFunc{"database": dbs.Ping}
	if clients.Redis != nil {
		rdb := clients.Redis
		deps["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return Handlers{
		Health:          httpH.NewHealthHandler(deps),
		LearningSession: httpH.NewLearningSessionHandler(services.LearningSession),
		Evaluation:      httpH.NewEvaluationHandler(services.Evaluation),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(cfg.HTTP.Addr, http.RouterConfig{
		Log:                    log,
		Metrics:                metrics,
		ServiceName:            cfg.Otel.ServiceName,
		CORSOrigins:            cfg.HTTP.CORSOrigins,
		AuthMiddleware:         middleware.Auth,
		HealthHandler:          handlers.Health,
		LearningSessionHandler: handlers.LearningSession,
		EvaluationHandler:      handlers.Evaluation,
	})
}
