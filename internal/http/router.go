package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/tutorlog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tutorlog-backend/internal/http/middleware"
	"github.com/yungbote/tutorlog-backend/internal/observability"
	"github.com/yungbote/tutorlog-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler          *httpH.HealthHandler
	LearningSessionHandler *httpH.LearningSessionHandler
	EvaluationHandler      *httpH.EvaluationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = observability.DefaultServiceName
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/healthcheck"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Sessions
		if cfg.LearningSessionHandler != nil {
			protected.POST("/sessions", cfg.LearningSessionHandler.Start)
			protected.GET("/sessions", cfg.LearningSessionHandler.List)
			protected.GET("/sessions/:id", cfg.LearningSessionHandler.Get)
			protected.POST("/sessions/:id/end", cfg.LearningSessionHandler.End)
		}

		// Evaluations
		if cfg.EvaluationHandler != nil {
			protected.POST("/evaluations", cfg.EvaluationHandler.Record)
			protected.GET("/evaluations/summary", cfg.EvaluationHandler.Summary)
		}
	}

	return r
}
