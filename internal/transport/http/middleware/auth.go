package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/trustdelivery/backoffice/internal/identity/app"
	"github.com/trustdelivery/backoffice/internal/identity/domain"
	"github.com/trustdelivery/backoffice/internal/identity/repository"
)

// ContextKey is a dedicated type for context keys to avoid collisions.
type ContextKey string

// AuthenticatedUserContextKey is where the resolved identity lives in the
// request context.
const AuthenticatedUserContextKey = ContextKey("authenticatedUser")

// RefreshedTokenHeader carries a transparently reissued session token back to
// the client; the caller may adopt it silently.
const RefreshedTokenHeader = "X-Auth-Token"

// AuthenticatedUser is the identity resolved for a request. It is re-fetched
// from the store on every request; role and status inside the token are
// never trusted once the token is minted.
type AuthenticatedUser struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// UserFromContext extracts the authenticated identity, if any.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(AuthenticatedUserContextKey).(AuthenticatedUser)
	return user, ok
}

// bodyToken is used to recover a token from a JSON request body, the lowest-
// precedence transport the mobile client uses.
type bodyToken struct {
	Token string `json:"token"`
}

// extractToken pulls the bearer token from, in order: Authorization header,
// jwt cookie, body field. First present wins.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie("jwt"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if r.Body != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return ""
		}
		// Put the body back so the handler behind the gate can still read it.
		r.Body = io.NopCloser(bytes.NewReader(raw))
		var bt bodyToken
		if err := json.Unmarshal(raw, &bt); err == nil && bt.Token != "" {
			return bt.Token
		}
	}
	return ""
}

// Authenticate is the access-control gate applied before every protected
// handler: it verifies the token, re-fetches the account, rejects locked or
// inactive accounts, reissues near-expiry tokens, and stores the resolved
// identity in the request context.
func Authenticate(tokens *app.TokenService, accounts repository.AccountRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required. Please log in.")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, app.ErrTokenExpired) {
					writeAuthError(w, http.StatusUnauthorized, "Your session has expired. Please log in again.")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "Session is invalid.")
				return
			}

			account, err := accounts.GetByID(r.Context(), claims.AccountID)
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					writeAuthError(w, http.StatusUnauthorized, "User no longer exists.")
					return
				}
				logger.ErrorContext(r.Context(), "failed to resolve account for token", "error", err)
				writeAuthError(w, http.StatusInternalServerError, "Authentication failed. Please try again.")
				return
			}

			now := time.Now()
			if account.LockedNow(now) {
				writeLockedError(w, account.LockUntil)
				return
			}
			if !account.IsActive {
				writeAuthError(w, http.StatusForbidden, "Account is inactive. Please contact support.")
				return
			}

			if newToken, ok, err := tokens.RefreshIfNeeded(claims.ExpiresAt, account); err != nil {
				logger.WarnContext(r.Context(), "failed to refresh near-expiry token", "error", err, "accountID", account.ID)
			} else if ok {
				w.Header().Set(RefreshedTokenHeader, newToken)
			}

			authUser := AuthenticatedUser{
				ID:        account.ID,
				Username:  account.Username,
				Email:     account.Email,
				Role:      account.Role,
				IsActive:  account.IsActive,
				CreatedAt: account.CreatedAt,
			}
			ctx := context.WithValue(r.Context(), AuthenticatedUserContextKey, authUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}

func writeLockedError(w http.ResponseWriter, lockUntil *time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	body := map[string]any{
		"status":  "error",
		"message": "Account is locked. Please try again later.",
	}
	if lockUntil != nil {
		body["lockUntil"] = lockUntil
	}
	_ = json.NewEncoder(w).Encode(body)
}
