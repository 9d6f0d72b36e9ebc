package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutorlog-backend/internal/http/response"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	deps map[string]PingFunc
}

func NewHealthHandler(deps map[string]PingFunc) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	for name, p := range h.deps {
		if p == nil {
			continue
		}
		if err := p(ctx); err != nil {
			response.RespondError(c, http.StatusServiceUnavailable, "not_ready", errors.New(name+" unavailable"))
			return
		}
	}
	response.RespondOK(c, gin.H{"status": "ready"})
}
