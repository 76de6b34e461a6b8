package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trustdelivery/backoffice/internal/identity/app"
	"github.com/trustdelivery/backoffice/internal/transport/http/middleware"
)

// AuthHandler exposes login, registration and account self-service endpoints.
type AuthHandler struct {
	auth   *app.AuthService
	logger *slog.Logger
	debug  bool
}

func NewAuthHandler(auth *app.AuthService, logger *slog.Logger, debug bool) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("handler", "auth"),
		debug:  debug,
	}
}

// RegisterCredentialRoutes mounts the endpoints that accept passwords; the
// router puts the per-IP limiter in front of these and nothing else.
func (h *AuthHandler) RegisterCredentialRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
}

// RegisterPublicRoutes mounts the remaining unauthenticated endpoints.
func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/user-status", h.handleUserStatus)
	r.Post("/activate-account", h.handleActivateAccount)
}

// RegisterProtectedRoutes mounts the endpoints that require a valid session.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Post("/logout", h.handleLogout)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  result.Account,
	})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusCreated, map[string]any{
		"token": result.Token,
		"user":  result.Account,
	})
}

// handleUserStatus looks up an account's public view without requiring a
// session, so a blocked client can see why login fails.
func (h *AuthHandler) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondErrorMessage(w, http.StatusBadRequest, "Query parameter 'email' is required.")
		return
	}

	account, err := h.auth.UserStatus(r.Context(), email)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": account})
}

func (h *AuthHandler) handleActivateAccount(w http.ResponseWriter, r *http.Request) {
	var req userStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.auth.ActivateAccount(r.Context(), req.Email)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": account})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	var req changePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}

	respondMessage(w, http.StatusOK, "Password changed successfully.")
}

// handleLogout clears the session cookie. Tokens themselves stay valid until
// expiry; the server keeps no session state to revoke.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondMessage(w, http.StatusOK, "Logged out.")
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
