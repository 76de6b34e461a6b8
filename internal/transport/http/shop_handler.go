package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trustdelivery/backoffice/internal/identity/app"
)

// ShopHandler exposes the online shop profile endpoints.
type ShopHandler struct {
	shops  *app.ShopService
	logger *slog.Logger
	debug  bool
}

func NewShopHandler(shops *app.ShopService, logger *slog.Logger, debug bool) *ShopHandler {
	return &ShopHandler{
		shops:  shops,
		logger: logger.With("handler", "shops"),
		debug:  debug,
	}
}

// RegisterReadRoutes mounts the listing endpoints open to any authenticated
// account; customers pick a shop when placing an order.
func (h *ShopHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
}

// RegisterWriteRoutes mounts the management endpoints.
func (h *ShopHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Patch("/{id}", h.handleUpdate)
}

func (h *ShopHandler) handleList(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shops.List(r.Context())
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"shops": shops})
}

func (h *ShopHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	shop, err := h.shops.Create(r.Context(), app.ShopInput{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Township:    req.Township,
		Email:       req.Email,
	})
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"shop": shop})
}

func (h *ShopHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	shop, err := h.shops.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"shop": shop})
}

func (h *ShopHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	shop, err := h.shops.Update(r.Context(), chi.URLParam(r, "id"), app.ShopInput{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Township:    req.Township,
		Email:       req.Email,
	})
	if err != nil {
		respondError(w, r, h.logger, h.debug, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"shop": shop})
}
