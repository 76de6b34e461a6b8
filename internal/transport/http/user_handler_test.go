package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustdelivery/backoffice/internal/identity/app"
	"github.com/trustdelivery/backoffice/internal/identity/domain"
)

// newAPIRouter assembles the real route tree around the in-memory account
// store, so the role gates are exercised exactly as deployed.
func newAPIRouter(t *testing.T, accounts *fakeAccounts) (http.Handler, *app.TokenService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := app.NewTokenService(app.TokenConfig{
		Secret:       "router-secret",
		TTL:          24 * time.Hour,
		RefreshBelow: time.Hour,
	})
	auth := app.NewAuthService(accounts, tokens, nil, app.AuthConfig{
		MaxFailedLogins: 5,
		LockoutDuration: 30 * time.Minute,
	}, logger)

	router := NewRouter(RouterDeps{
		Auth:     auth,
		Tokens:   tokens,
		Accounts: accounts,
		Users:    app.NewAccountService(accounts, logger),
		Logger:   logger,
	})
	return router, tokens
}

func staffAccount(role domain.Role) *domain.Account {
	return &domain.Account{
		ID:       "staff-1",
		Username: "staff",
		Email:    "staff@example.com",
		Role:     role,
		IsActive: true,
	}
}

func doAs(t *testing.T, router http.Handler, tokens *app.TokenService, account *domain.Account, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := tokens.Issue(account)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestManagerCanListUsers(t *testing.T) {
	accounts := &fakeAccounts{account: staffAccount(domain.RoleManager)}
	router, tokens := newAPIRouter(t, accounts)

	rec := doAs(t, router, tokens, accounts.account, http.MethodGet, "/api/users/")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestManagerCannotDeleteUser(t *testing.T) {
	accounts := &fakeAccounts{account: staffAccount(domain.RoleManager)}
	router, tokens := newAPIRouter(t, accounts)

	rec := doAs(t, router, tokens, accounts.account, http.MethodDelete, "/api/users/cust-1")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, accounts.deleted)
}

func TestManagerCannotToggleLock(t *testing.T) {
	accounts := &fakeAccounts{account: staffAccount(domain.RoleManager)}
	router, tokens := newAPIRouter(t, accounts)

	rec := doAs(t, router, tokens, accounts.account, http.MethodPatch, "/api/users/cust-1/toggle-lock")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestManagerCannotToggleStatus(t *testing.T) {
	accounts := &fakeAccounts{account: staffAccount(domain.RoleManager)}
	router, tokens := newAPIRouter(t, accounts)

	rec := doAs(t, router, tokens, accounts.account, http.MethodPatch, "/api/users/cust-1/toggle-status")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomerCannotListUsers(t *testing.T) {
	accounts := &fakeAccounts{account: staffAccount(domain.RoleCustomer)}
	router, tokens := newAPIRouter(t, accounts)

	rec := doAs(t, router, tokens, accounts.account, http.MethodGet, "/api/users/")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminCanDeleteUser(t *testing.T) {
	accounts := &fakeAccounts{account: staffAccount(domain.RoleAdmin)}
	router, tokens := newAPIRouter(t, accounts)

	rec := doAs(t, router, tokens, accounts.account, http.MethodDelete, "/api/users/staff-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"staff-1"}, accounts.deleted)
}

func TestAdminToggleLockReportsAccountLocked(t *testing.T) {
	admin := staffAccount(domain.RoleAdmin)
	accounts := &fakeAccounts{account: admin}
	router, tokens := newAPIRouter(t, accounts)

	rec := doAs(t, router, tokens, admin, http.MethodPatch, "/api/users/staff-1/toggle-lock")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body.Data["accountLocked"])
}
