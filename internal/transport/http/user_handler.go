package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trustdelivery/backoffice/internal/identity/app"
	"github.com/trustdelivery/backoffice/internal/transport/http/middleware"
)

// UserHandler exposes the administrative account endpoints.
type UserHandler struct {
	accounts *app.AccountService
	logger   *slog.Logger
	debug    bool
}

func NewUserHandler(accounts *app.AccountService, logger *slog.Logger, debug bool) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		logger:   logger.With("handler", "users"),
		debug:    debug,
	}
}

// RegisterProfileRoutes mounts the self-service endpoints available to any
// authenticated account.
func (h *UserHandler) RegisterProfileRoutes(r chi.Router) {
	r.Get("/profile", h.handleGetProfile)
	r.Patch("/profile", h.handleUpdateProfile)
}

// RegisterAdminReadRoutes mounts the account listing endpoints. Managers get
// read access here; every mutation lives behind the admin-only group.
func (h *UserHandler) RegisterAdminReadRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
}

// RegisterAdminWriteRoutes mounts the account mutation endpoints.
func (h *UserHandler) RegisterAdminWriteRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Patch("/{id}/toggle-status", h.handleToggleActive)
	r.Patch("/{id}/toggle-lock", h.handleToggleLock)
}

func (h *UserHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}
	view, err := h.accounts.Get(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": view})
}

// handleUpdateProfile lets an account change its own username and email.
// Role changes stay admin-only.
func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	var req updateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.accounts.UpdateProfile(r.Context(), user.ID, req.Username, req.Email, "")
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": view})
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.Add(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), chi.URLParam(r, "id"), req.Username, req.Email, req.Role)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondMessage(w, http.StatusOK, "User deleted.")
}

func (h *UserHandler) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *UserHandler) handleToggleLock(w http.ResponseWriter, r *http.Request) {
	locked, err := h.accounts.ToggleLock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"accountLocked": locked})
}
