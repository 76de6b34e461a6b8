package middleware

import (
	"net/http"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
)

// RequireRoles allows the request through only when the authenticated
// account's current role is in the allow list. Must run after Authenticate.
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required. Please log in.")
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "You do not have permission to perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
