package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/settings"
)

// AdminHandler serves the operator console: order inspection, status
// transitions and store settings.
type AdminHandler struct {
	orders   order.Service
	settings settings.Repository
	validate *validator.Validate
}

func NewAdminHandler(orders order.Service, settingsRepo settings.Repository) *AdminHandler {
	return &AdminHandler{
		orders:   orders,
		settings: settingsRepo,
		validate: validator.New(),
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders/{orderID}", h.handleGetOrder)
	router.Post("/orders/{orderID}/transition", h.handleTransition)
	router.Get("/settings", h.handleGetSettings)
	router.Put("/settings", h.handlePutSettings)
}

type AdminOrderResponse struct {
	Order        *order.Order   `json:"order"`
	NextStatuses []order.Status `json:"next_statuses"`
}

func (h *AdminHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "orderID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, AdminOrderResponse{
		Order:        o,
		NextStatuses: order.NextStatuses(o.Status),
	})
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=NO_PAGADO PAGO_EN_VERIFICACION PENDIENTE EN_EJECUCION TERMINADO COMPLETADO CANCELADO"`
}

func (h *AdminHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "orderID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req TransitionRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.orders.RequestStatusChange(r.Context(), orderID, order.Status(req.Status))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, AdminOrderResponse{
		Order:        updated,
		NextStatuses: order.NextStatuses(updated.Status),
	})
}

func (h *AdminHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, s)
}

type SettingsRequest struct {
	Currency             string `json:"currency" validate:"required,len=3"`
	PickupAddress        string `json:"pickup_address"`
	PayOnPickupEnabled   bool   `json:"pay_on_pickup_enabled"`
	GuestCheckoutEnabled bool   `json:"guest_checkout_enabled"`
	CartTTLHours         int    `json:"cart_ttl_hours" validate:"min=1"`
}

func (h *AdminHandler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	s := settings.StoreSettings{
		Currency:             req.Currency,
		PickupAddress:        req.PickupAddress,
		PayOnPickupEnabled:   req.PayOnPickupEnabled,
		GuestCheckoutEnabled: req.GuestCheckoutEnabled,
		CartTTLHours:         req.CartTTLHours,
	}
	if err := h.settings.Save(r.Context(), s); err != nil {
		respondWithDomainError(w, err)
		return
	}

	saved, err := h.settings.Load(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, saved)
}
