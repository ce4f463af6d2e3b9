package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/internal/observability"
	"forum-api/pkg/auth"
	apperrors "forum-api/pkg/errors"
)

const secret = "test-secret"

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// scopeEcho reports the scope the router resolved for the request.
type scopeEcho struct {
	calls int
	scope access.Scope
}

func (s *scopeEcho) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls++
	s.scope = access.FromContext(r.Context())
	if r.URL.Query().Get("panic") != "" {
		panic("boom")
	}
	writeJSON(w, http.StatusOK, map[string]string{"user": s.scope.UserID()})
}

type harness struct {
	echo    *scopeEcho
	pingErr error
	handler http.Handler
	tokens  *auth.JWTGenerator
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{echo: &scopeEcho{}}

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: secret, Issuer: "forum-api"})
	require.NoError(t, err)
	h.tokens, err = auth.NewJWTGenerator(auth.JWTGeneratorConfig{SecretKey: secret, Issuer: "forum-api"})
	require.NoError(t, err)

	resolver := access.NewResolver(func() access.RolePermissions {
		return access.RolePermissions{"member": {"showForums"}}
	})
	store := pingFunc(func(context.Context) error { return h.pingErr })
	logger := zap.NewNop()

	h.handler = NewRouter(h.echo, store, validator, resolver, apperrors.NewErrorHandler(logger, false), opts, logger).Setup()
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("store answers", func(t *testing.T) {
		h := newHarness(t, Options{})

		w := h.do(httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("store down", func(t *testing.T) {
		h := newHarness(t, Options{})
		h.pingErr = errors.New("no reachable servers")

		w := h.do(httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "no reachable servers")
	})
}

func TestGraphQL_Anonymous(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, h.echo.calls)
	assert.False(t, h.echo.scope.Authenticated())
}

func TestGraphQL_ValidToken(t *testing.T) {
	h := newHarness(t, Options{})
	token, err := h.tokens.GenerateToken(auth.UserContext{UserID: "u1", TenantID: "acme", Roles: []string{"member"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := h.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	scope := h.echo.scope
	assert.Equal(t, "u1", scope.UserID())
	assert.True(t, scope.Can("showForums"))
	assert.Equal(t, "acme", scope.Base()["tenantId"])
}

func TestGraphQL_RejectedTokens(t *testing.T) {
	expired, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{SecretKey: secret, Issuer: "forum-api", ExpiryTime: -time.Minute})
	require.NoError(t, err)
	expiredToken, err := expired.GenerateToken(auth.UserContext{UserID: "u1"})
	require.NoError(t, err)

	other, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{SecretKey: "other", Issuer: "forum-api"})
	require.NoError(t, err)
	forged, err := other.GenerateToken(auth.UserContext{UserID: "u1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{name: "expired", header: "Bearer " + expiredToken, message: "token has expired"},
		{name: "wrong key", header: "Bearer " + forged, message: "invalid token signature"},
		{name: "garbage", header: "Bearer not-a-jwt", message: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{}`))
			req.Header.Set("Authorization", tt.header)

			w := h.do(req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Zero(t, h.echo.calls)

			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(apperrors.ErrorTypeUnauthenticated), body.Type)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestRequestID(t *testing.T) {
	h := newHarness(t, Options{})

	t.Run("generated", func(t *testing.T) {
		w := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")

		w := h.do(req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}

func TestPanicIsRecovered(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(httptest.NewRequest(http.MethodGet, "/graphql?panic=1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.ErrorTypeInternal))
}

func TestMetricsRoute(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		h := newHarness(t, Options{Metrics: observability.NewCollector("forum_test")})
		h.do(httptest.NewRequest(http.MethodGet, "/health", nil))

		w := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "forum_test_http_requests_total")
	})

	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t, Options{})

		w := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
