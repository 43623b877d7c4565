package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/civic-connect/backend/internal/auth"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEcho(t *testing.T) (*echo.Echo, *auth.TokenManager, *auth.MemoryRevocationStore) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	revoked := auth.NewMemoryRevocationStore()
	sa := NewSessionAuth(tokens, revoked, zap.NewNop())

	e := echo.New()
	whoami := func(c echo.Context) error {
		s := SessionFrom(c)
		if s == nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, s.UserID)
	}
	e.GET("/required", whoami, sa.Required())
	e.GET("/optional", whoami, sa.Optional())
	e.GET("/admin", whoami, sa.Required(), RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
	return e, tokens, revoked
}

func do(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequiredAuth(t *testing.T) {
	e, tokens, _ := newTestEcho(t)
	token, _, err := tokens.Issue(models.Session{UserID: "u1"})
	require.NoError(t, err)

	rec := do(e, "/required", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(e, "/required", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/required", "garbage").Code)
}

func TestOptionalAuth(t *testing.T) {
	e, tokens, _ := newTestEcho(t)

	rec := do(e, "/optional", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	token, _, err := tokens.Issue(models.Session{UserID: "u1"})
	require.NoError(t, err)
	rec = do(e, "/optional", token)
	assert.Equal(t, "u1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(e, "/optional", "garbage").Code)
}

func TestRevokedTokenRejected(t *testing.T) {
	e, tokens, revoked := newTestEcho(t)
	token, session, err := tokens.Issue(models.Session{UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, revoked.Revoke(context.Background(), session.TokenID, session.ExpiresAt))

	assert.Equal(t, http.StatusUnauthorized, do(e, "/required", token).Code)
}

func TestRequireRole(t *testing.T) {
	e, tokens, _ := newTestEcho(t)

	citizen, _, err := tokens.Issue(models.Session{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(e, "/admin", citizen).Code)

	admin, _, err := tokens.Issue(models.Session{UserID: "a1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(e, "/admin", admin).Code)
}

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (m *memoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int64)
	}
	m.counts[key]++
	return m.counts[key], window, nil
}

func TestReportRateLimiter(t *testing.T) {
	e := echo.New()
	counter := &memoryCounter{}
	e.POST("/issues", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, ReportRateLimiter(counter, 2, time.Hour, zap.NewNop()))

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/issues", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.2"))
}
