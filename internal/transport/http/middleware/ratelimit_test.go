package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
)

func contextWithUser(r *http.Request, user AuthenticatedUser) context.Context {
	return context.WithValue(r.Context(), AuthenticatedUserContextKey, user)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterAllowsBurstThenRejects(t *testing.T) {
	rl := NewIPRateLimiter(5, 15*time.Minute)
	handler := rl.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:51000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:51000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])

	nextStr, ok := body["nextValidRequestTime"].(string)
	require.True(t, ok, "nextValidRequestTime missing")
	next, err := time.Parse(time.RFC3339Nano, nextStr)
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
}

func TestRateLimiterIsPerIP(t *testing.T) {
	rl := NewIPRateLimiter(1, 15*time.Minute)
	handler := rl.Middleware(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/login", nil)
	first.RemoteAddr = "10.0.0.1:51000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	blocked := httptest.NewRequest(http.MethodPost, "/login", nil)
	blocked.RemoteAddr = "10.0.0.1:51001"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, blocked)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	other := httptest.NewRequest(http.MethodPost, "/login", nil)
	other.RemoteAddr = "10.0.0.2:51000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	gate := RequireRoles(domain.RoleAdmin, domain.RoleManager)(okHandler())

	run := func(user *AuthenticatedUser) int {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		if user != nil {
			req = req.WithContext(contextWithUser(req, *user))
		}
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, run(nil))
	assert.Equal(t, http.StatusForbidden, run(&AuthenticatedUser{ID: "c", Role: domain.RoleCustomer}))
	assert.Equal(t, http.StatusForbidden, run(&AuthenticatedUser{ID: "r", Role: domain.RoleRider}))
	assert.Equal(t, http.StatusOK, run(&AuthenticatedUser{ID: "m", Role: domain.RoleManager}))
	assert.Equal(t, http.StatusOK, run(&AuthenticatedUser{ID: "a", Role: domain.RoleAdmin}))
}
