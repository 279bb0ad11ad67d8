package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/casedesk/session-guard/internal/core/audit"
	"github.com/casedesk/session-guard/internal/core/guard"
	"github.com/casedesk/session-guard/internal/core/ratelimit"
	"github.com/casedesk/session-guard/internal/core/service"
	"github.com/casedesk/session-guard/internal/core/token"
	"github.com/casedesk/session-guard/internal/infrastructure/db/kvstore"
)

type testServer struct {
	e     *echo.Echo
	audit *audit.Log
}

func newTestServer(t *testing.T, maxAttempts int) *testServer {
	t.Helper()

	hasher := guard.NewDemoHasher("router-test")
	users := kvstore.NewUserRepository(kvstore.NewMemoryStore())
	_, err := service.SeedUsers(context.Background(), users, hasher, service.DemoUsers)
	require.NoError(t, err)

	auditLog := audit.New(audit.DefaultCapacity)
	manager := service.NewSessionManager(
		users,
		hasher,
		token.NewCodec(token.NewDemoSigner("router-test")),
		ratelimit.New(maxAttempts, time.Minute),
		auditLog,
	)

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Auth:       manager,
		Audit:      auditLog,
		Log:        zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testServer{e: e, audit: auditLog}
}

func (s *testServer) do(t *testing.T, method, path, body, bearer string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestRouter_SessionFlow(t *testing.T) {
	s := newTestServer(t, 5)

	rec, resp := s.do(t, http.MethodPost, "/auth/register",
		`{"name":"New User","email":"new@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	tok, _ := resp["token"].(string)
	require.NotEmpty(t, tok)

	rec, resp = s.do(t, http.MethodGet, "/auth/me", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	user := resp["user"].(map[string]any)
	require.Equal(t, "new@example.com", user["email"])
	require.Equal(t, "user", user["role"])

	rec, resp = s.do(t, http.MethodGet, "/auth/token", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, resp["isValid"])

	rec, resp = s.do(t, http.MethodPost, "/auth/refresh", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, resp["token"])

	rec, _ = s.do(t, http.MethodPost, "/auth/logout", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, s.audit.Events(audit.EventRegisterSuccess), 1)
	require.Len(t, s.audit.Events(audit.EventTokenRefreshed), 1)
	require.Len(t, s.audit.Events(audit.EventLogout), 1)
}

func TestRouter_LoginErrors(t *testing.T) {
	s := newTestServer(t, 2)

	rec, resp := s.do(t, http.MethodPost, "/auth/login", `{"email":"demo@example.com","password":"nope"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, false, resp["success"])
	require.Equal(t, "invalid email or password", resp["error"])

	rec, _ = s.do(t, http.MethodPost, "/auth/login", `{"email":"","password":""}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = s.do(t, http.MethodPost, "/auth/login", `{"email":"demo@example.com","password":"demo123"}`, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.Equal(t, false, resp["success"])
}

func TestRouter_LoginSuccessAndDuplicateRegister(t *testing.T) {
	s := newTestServer(t, 5)

	rec, resp := s.do(t, http.MethodPost, "/auth/login", `{"email":"Demo@Example.com","password":"demo123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", resp["user"].(map[string]any)["role"])

	rec, _ = s.do(t, http.MethodPost, "/auth/register",
		`{"name":"Again","email":"demo@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = s.do(t, http.MethodPost, "/auth/register", `{"name":"Short","email":"s@example.com","password":"abc"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, resp["error"], "password")
}

func TestRouter_AuthRequired(t *testing.T) {
	s := newTestServer(t, 5)

	rec, resp := s.do(t, http.MethodGet, "/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "not authenticated", resp["error"])

	rec, resp = s.do(t, http.MethodPost, "/auth/refresh", "", "a.b.c")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "token verification failed", resp["error"])
}

func TestRouter_AdminAudit(t *testing.T) {
	s := newTestServer(t, 5)

	_, resp := s.do(t, http.MethodPost, "/auth/login", `{"email":"user@example.com","password":"user123"}`, "")
	userToken := resp["token"].(string)
	_, resp = s.do(t, http.MethodPost, "/auth/login", `{"email":"demo@example.com","password":"demo123"}`, "")
	adminToken := resp["token"].(string)

	rec, _ := s.do(t, http.MethodGet, "/admin/audit", "", userToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = s.do(t, http.MethodGet, "/admin/audit?type=login_success", "", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(2), resp["count"])

	rec, resp = s.do(t, http.MethodGet, "/admin/audit?type=access_denied", "", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), resp["count"])
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t, 5)

	rec, _ := s.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "casedesk_http_requests_total")

	rec, _ = s.do(t, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/auth/login")
}
