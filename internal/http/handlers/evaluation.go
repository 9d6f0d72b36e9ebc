package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutorlog-backend/internal/http/response"
	"github.com/yungbote/tutorlog-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorlog-backend/internal/services"
)

type EvaluationHandler struct {
	evaluations services.EvaluationService
}

func NewEvaluationHandler(evaluations services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// POST /api/evaluations
func (h *EvaluationHandler) Record(c *gin.Context) {
	var req services.RecordEvaluationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rec, err := h.evaluations.Record(dbctx.Context{Ctx: c.Request.Context()}, callerID(c), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"evaluation": rec})
}

// GET /api/evaluations/summary
func (h *EvaluationHandler) Summary(c *gin.Context) {
	summary, err := h.evaluations.Summary(dbctx.Context{Ctx: c.Request.Context()}, callerID(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}
