package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tutorlog-backend/internal/http/response"
	"github.com/yungbote/tutorlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutorlog-backend/internal/platform/dbctx"
	"github.com/yungbote/tutorlog-backend/internal/services"
)

type LearningSessionHandler struct {
	sessions services.LearningSessionService
}

func NewLearningSessionHandler(sessions services.LearningSessionService) *LearningSessionHandler {
	return &LearningSessionHandler{sessions: sessions}
}

// POST /api/sessions
func (h *LearningSessionHandler) Start(c *gin.Context) {
	var req services.StartSessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		// empty body starts an untopiced session
		req = services.StartSessionInput{}
	}
	session, created, err := h.sessions.Start(dbctx.Context{Ctx: c.Request.Context()}, callerID(c), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"session": session, "created": created})
}

// GET /api/sessions
func (h *LearningSessionHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	sessions, err := h.sessions.List(dbctx.Context{Ctx: c.Request.Context()}, callerID(c), limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/sessions/:id
func (h *LearningSessionHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.Get(dbctx.Context{Ctx: c.Request.Context()}, callerID(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// POST /api/sessions/:id/end
func (h *LearningSessionHandler) End(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.End(dbctx.Context{Ctx: c.Request.Context()}, callerID(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

func callerID(c *gin.Context) uuid.UUID {
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
