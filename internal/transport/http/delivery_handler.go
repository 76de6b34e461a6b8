package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trustdelivery/backoffice/internal/courier/app"
	"github.com/trustdelivery/backoffice/internal/courier/domain"
	"github.com/trustdelivery/backoffice/internal/transport/http/middleware"
)

// DeliveryHandler exposes the delivery lifecycle endpoints. Role policy on
// reads and transitions lives in the service; the handler only shapes HTTP.
type DeliveryHandler struct {
	deliveries *app.DeliveryService
	logger     *slog.Logger
	debug      bool
}

func NewDeliveryHandler(deliveries *app.DeliveryService, logger *slog.Logger, debug bool) *DeliveryHandler {
	return &DeliveryHandler{
		deliveries: deliveries,
		logger:     logger.With("handler", "deliveries"),
		debug:      debug,
	}
}

func (h *DeliveryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Delete("/{id}", h.handleDelete)
	r.Patch("/{id}/status", h.handleUpdateStatus)
	r.Patch("/{id}/payment", h.handleUpdatePayment)
	r.Patch("/{id}/assign", h.handleAssignRider)
}

func actorFrom(r *http.Request) (app.Actor, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return app.Actor{}, false
	}
	return app.Actor{AccountID: user.ID, Role: user.Role}, true
}

func (h *DeliveryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	deliveries, err := h.deliveries.List(r.Context(), actor)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deliveries": deliveries})
}

func (h *DeliveryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	var req createDeliveryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	delivery, err := h.deliveries.Create(r.Context(), actor, app.NewDeliveryInput{
		RiderID:         req.RiderID,
		ShopID:          req.ShopID,
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
		ScheduledTime:   req.ScheduledTime,
		Notes:           req.Notes,
		Price:           req.Price,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"delivery": delivery})
}

func (h *DeliveryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	delivery, err := h.deliveries.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"delivery": delivery})
}

func (h *DeliveryHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	var req updateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}

	delivery, err := h.deliveries.Transition(r.Context(), actor, chi.URLParam(r, "id"), status)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"delivery": delivery})
}

func (h *DeliveryHandler) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	var req updatePaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status, err := domain.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}

	delivery, err := h.deliveries.UpdatePayment(r.Context(), actor, chi.URLParam(r, "id"), status, req.PaymentMethod)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"delivery": delivery})
}

func (h *DeliveryHandler) handleAssignRider(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	var req assignRiderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	delivery, err := h.deliveries.AssignRider(r.Context(), actor, chi.URLParam(r, "id"), req.RiderID)
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"delivery": delivery})
}

func (h *DeliveryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	if err := h.deliveries.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondMessage(w, http.StatusOK, "Delivery deleted.")
}
