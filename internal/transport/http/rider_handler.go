package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trustdelivery/backoffice/internal/identity/app"
)

// RiderHandler exposes the courier profile endpoints.
type RiderHandler struct {
	riders *app.RiderService
	logger *slog.Logger
	debug  bool
}

func NewRiderHandler(riders *app.RiderService, logger *slog.Logger, debug bool) *RiderHandler {
	return &RiderHandler{
		riders: riders,
		logger: logger.With("handler", "riders"),
		debug:  debug,
	}
}

func (h *RiderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleUpdate)
	r.Patch("/{id}/toggle-status", h.handleToggleStatus)
}

func (h *RiderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	riders, err := h.riders.List(r.Context())
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"riders": riders})
}

func (h *RiderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRiderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rider, err := h.riders.Create(r.Context(), app.NewRiderInput{
		Name:             req.Name,
		PhoneNumber:      req.PhoneNumber,
		Township:         req.Township,
		FullAddress:      req.FullAddress,
		Email:            req.Email,
		Password:         req.Password,
		NRC:              req.NRC,
		JoinedDate:       req.JoinedDate,
		EmergencyContact: req.EmergencyContact,
		VehicleType:      req.VehicleType,
	})
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"rider": rider})
}

func (h *RiderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	rider, err := h.riders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rider": rider})
}

func (h *RiderHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRiderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rider, err := h.riders.Update(r.Context(), chi.URLParam(r, "id"), app.UpdateRiderInput{
		Name:             req.Name,
		PhoneNumber:      req.PhoneNumber,
		Township:         req.Township,
		FullAddress:      req.FullAddress,
		NRC:              req.NRC,
		EmergencyContact: req.EmergencyContact,
		VehicleType:      req.VehicleType,
		Email:            req.Email,
	})
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rider": rider})
}

func (h *RiderHandler) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	rider, err := h.riders.ToggleStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rider": rider})
}
