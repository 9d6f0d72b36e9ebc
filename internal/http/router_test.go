package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/tutorlog-backend/internal/data/cache"
	"github.com/yungbote/tutorlog-backend/internal/data/repos"
	"github.com/yungbote/tutorlog-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/tutorlog-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tutorlog-backend/internal/http/middleware"
	"github.com/yungbote/tutorlog-backend/internal/observability"
	"github.com/yungbote/tutorlog-backend/internal/services"
)

type testServer struct {
	engine *gin.Engine
	auth   services.AuthService
}

func newTestServer(t *testing.T, ready httpH.PingFunc) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.NewMetrics()
	sessionRepo := repos.NewLearningSessionRepo(db, log)
	evalRepo := repos.NewEvaluationRecordRepo(db, log)

	auth := services.NewAuthService(log, "test-secret", "", time.Hour)
	sessionSvc := services.NewLearningSessionService(db, log, sessionRepo, metrics)
	evalSvc := services.NewEvaluationService(db, log, evalRepo, sessionRepo, cache.NewNoopSummaryCache(), metrics)

	engine := NewRouter(RouterConfig{
		Log:                    log,
		Metrics:                metrics,
		AuthMiddleware:         httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:          httpH.NewHealthHandler(map[string]httpH.PingFunc{"database": ready}),
		LearningSessionHandler: httpH.NewLearningSessionHandler(sessionSvc),
		EvaluationHandler:      httpH.NewEvaluationHandler(evalSvc),
	})
	return testServer{engine: engine, auth: auth}
}

func (s testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := s.auth.IssueAccessToken(userID)
	require.NoError(t, err)
	return tok
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

type sessionBody struct {
	Session struct {
		ID        uuid.UUID `json:"id"`
		Status    string    `json:"status"`
		TopicName *string   `json:"topic_name"`
	} `json:"session"`
	Created bool `json:"created"`
}

func okPing(context.Context) error { return nil }

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, okPing)

	rec := s.do(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReadyzReportsFailingDependency(t *testing.T) {
	s := newTestServer(t, func(context.Context) error { return errors.New("down") })

	rec := s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", decode[errorBody](t, rec).Error.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, okPing)

	for _, tc := range []struct{ method, path, token string }{
		{http.MethodGet, "/api/sessions", ""},
		{http.MethodGet, "/api/evaluations/summary", ""},
		{http.MethodPost, "/api/evaluations", "not-a-token"},
	} {
		rec := s.do(t, tc.method, tc.path, tc.token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.Equal(t, "unauthorized", decode[errorBody](t, rec).Error.Code)
	}
}

func TestTokenQueryParam(t *testing.T) {
	s := newTestServer(t, okPing)
	tok := s.token(t, uuid.New())

	rec := s.do(t, http.MethodGet, "/api/evaluations/summary?token="+tok, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, okPing)
	tok := s.token(t, uuid.New())

	rec := s.do(t, http.MethodPost, "/api/sessions", tok, map[string]any{"topic_name": "fractions"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	started := decode[sessionBody](t, rec)
	assert.True(t, started.Created)
	assert.Equal(t, "active", started.Session.Status)

	rec = s.do(t, http.MethodPost, "/api/sessions", tok, map[string]any{"topic_name": "fractions"})
	require.Equal(t, http.StatusOK, rec.Code)
	resumed := decode[sessionBody](t, rec)
	assert.False(t, resumed.Created)
	assert.Equal(t, started.Session.ID, resumed.Session.ID)

	rec = s.do(t, http.MethodPost, "/api/sessions", tok, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/sessions?limit=10", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Sessions []json.RawMessage `json:"sessions"`
	}](t, rec)
	assert.Len(t, list.Sessions, 2)

	rec = s.do(t, http.MethodGet, "/api/sessions/"+started.Session.ID.String(), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/sessions/"+started.Session.ID.String()+"/end", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode[sessionBody](t, rec).Session.Status)

	rec = s.do(t, http.MethodGet, "/api/sessions/not-a-uuid", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/sessions?limit=abc", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// another user cannot see the session
	rec = s.do(t, http.MethodGet, "/api/sessions/"+started.Session.ID.String(), s.token(t, uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session_not_found", decode[errorBody](t, rec).Error.Code)
}

func TestEvaluationsAndSummary(t *testing.T) {
	s := newTestServer(t, okPing)
	tok := s.token(t, uuid.New())

	rec := s.do(t, http.MethodGet, "/api/evaluations/summary", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":{
		"total_evaluations":0,"correct_count":0,"partial_count":0,"incorrect_count":0,
		"accuracy_percentage":0,"error_patterns":[],"recent_topics":[]}}`, rec.Body.String())

	base := time.Now().Add(-time.Hour).UTC()
	inputs := []map[string]any{
		{"evaluation": "correct", "topic_name": "fractions"},
		{"evaluation": "incorrect", "error_type": "sign_error", "topic_name": "algebra"},
		{"evaluation": "partial", "error_type": "rounding", "topic_name": "fractions"},
		{"evaluation": "incorrect", "error_type": "sign_error", "topic_name": "geometry"},
	}
	for i, in := range inputs {
		in["evaluated_at"] = base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339Nano)
		rec = s.do(t, http.MethodPost, "/api/evaluations", tok, in)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/evaluations/summary", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":{
		"total_evaluations":4,"correct_count":1,"partial_count":1,"incorrect_count":2,
		"accuracy_percentage":25,
		"error_patterns":[
			{"error_type":"sign_error","count":2,"percentage":50},
			{"error_type":"rounding","count":1,"percentage":25}
		],
		"recent_topics":["geometry","fractions","algebra"]}}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/evaluations", tok, map[string]any{"evaluation": "excellent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/evaluations", tok, map[string]any{
		"evaluation": "correct",
		"session_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
