package http

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/nvillanueva/detalia/internal/cart"
	"github.com/nvillanueva/detalia/internal/checkout"
	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/orderapi"
	"github.com/nvillanueva/detalia/internal/product"
	"github.com/nvillanueva/detalia/internal/tracking"
)

// StorefrontHandler serves the customer-facing surface: cart, checkout and
// tracking. The server is stateless; the cart identity travels in the URL and
// every request rehydrates the cart from storage.
type StorefrontHandler struct {
	storage  cart.Storage
	client   orderapi.Client
	validate *validator.Validate
}

func NewStorefrontHandler(storage cart.Storage, client orderapi.Client) *StorefrontHandler {
	return &StorefrontHandler{
		storage:  storage,
		client:   client,
		validate: validator.New(),
	}
}

func (h *StorefrontHandler) RegisterRoutes(router chi.Router) {
	router.Post("/carts", h.handleCreateCart)
	router.Get("/carts/{cartID}", h.handleGetCart)
	router.Post("/carts/{cartID}/lines", h.handleAddLine)
	router.Delete("/carts/{cartID}/lines/{productID}", h.handleRemoveLine)
	router.Post("/carts/{cartID}/lines/{productID}/increase", h.handleIncrease)
	router.Post("/carts/{cartID}/lines/{productID}/decrease", h.handleDecrease)
	router.Delete("/carts/{cartID}", h.handleClearCart)
	router.Post("/carts/{cartID}/checkout", h.handleCheckout)
	router.Post("/orders/{orderID}/proof", h.handleRetryProof)
	router.Get("/orders/{orderID}/tracking", h.handleTracking)
}

type CartLineResponse struct {
	Product         product.Snapshot       `json:"product"`
	Quantity        int                    `json:"quantity"`
	Variants        map[string]string      `json:"variants,omitempty"`
	Personalization *order.Personalization `json:"personalization,omitempty"`
	UnitPrice       decimal.Decimal        `json:"unit_price"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
}

type CartResponse struct {
	CartID string             `json:"cart_id"`
	Lines  []CartLineResponse `json:"lines"`
	Total  decimal.Decimal    `json:"total"`
}

func cartResponse(cartID string, s *cart.Store) CartResponse {
	resp := CartResponse{CartID: cartID, Lines: []CartLineResponse{}, Total: s.TotalPrice()}
	for _, line := range s.Lines() {
		resp.Lines = append(resp.Lines, CartLineResponse{
			Product:         line.Product,
			Quantity:        line.Quantity,
			Variants:        line.Variants,
			Personalization: line.Personalization,
			UnitPrice:       line.EffectiveUnitPrice(),
			Subtotal:        line.Subtotal(),
		})
	}
	return resp
}

func (h *StorefrontHandler) cartStore(r *http.Request) (string, *cart.Store) {
	cartID := chi.URLParam(r, "cartID")
	return cartID, cart.NewStore(r.Context(), cartID, h.storage)
}

func (h *StorefrontHandler) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.NewV4()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to create cart")
		return
	}
	respondWithJSON(w, http.StatusCreated, CartResponse{CartID: id.String(), Lines: []CartLineResponse{}, Total: decimal.Zero})
}

func (h *StorefrontHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cartID, s := h.cartStore(r)
	respondWithJSON(w, http.StatusOK, cartResponse(cartID, s))
}

type AddLineRequest struct {
	Product         product.Snapshot       `json:"product"`
	Quantity        int                    `json:"quantity" validate:"min=1"`
	Variants        map[string]string      `json:"variants"`
	Personalization *order.Personalization `json:"personalization"`
}

func (h *StorefrontHandler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if req.Product.ID == "" {
		respondWithError(w, http.StatusBadRequest, "product.id is required")
		return
	}

	cartID, s := h.cartStore(r)
	s.Add(r.Context(), req.Product, req.Quantity, req.Variants, req.Personalization)
	respondWithJSON(w, http.StatusOK, cartResponse(cartID, s))
}

func (h *StorefrontHandler) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	cartID, s := h.cartStore(r)
	s.Remove(r.Context(), chi.URLParam(r, "productID"))
	respondWithJSON(w, http.StatusOK, cartResponse(cartID, s))
}

func (h *StorefrontHandler) handleIncrease(w http.ResponseWriter, r *http.Request) {
	cartID, s := h.cartStore(r)
	s.Increase(r.Context(), chi.URLParam(r, "productID"))
	respondWithJSON(w, http.StatusOK, cartResponse(cartID, s))
}

func (h *StorefrontHandler) handleDecrease(w http.ResponseWriter, r *http.Request) {
	cartID, s := h.cartStore(r)
	s.Decrease(r.Context(), chi.URLParam(r, "productID"))
	respondWithJSON(w, http.StatusOK, cartResponse(cartID, s))
}

func (h *StorefrontHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	cartID, s := h.cartStore(r)
	s.Clear(r.Context())
	respondWithJSON(w, http.StatusOK, cartResponse(cartID, s))
}

type ProofPayload struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	Data        string `json:"data" validate:"required,base64"`
}

func (p *ProofPayload) asset() (orderapi.ProofAsset, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return orderapi.ProofAsset{}, err
	}
	return orderapi.ProofAsset{Filename: p.Filename, ContentType: p.ContentType, Data: data}, nil
}

type GuestPayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

type CheckoutRequest struct {
	CustomerID   *string       `json:"customer_id" validate:"omitempty,uuid4"`
	Guest        *GuestPayload `json:"guest"`
	DeliveryMode string        `json:"delivery_mode" validate:"required,oneof=DELIVERY PICKUP"`
	PayOnPickup  bool          `json:"pay_on_pickup"`
	Proof        *ProofPayload `json:"proof"`
}

type CheckoutResponse struct {
	Order       *order.Order `json:"order"`
	ProofFailed bool         `json:"proof_failed,omitempty"`
}

func (h *StorefrontHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if req.CustomerID == nil && req.Guest == nil {
		respondWithError(w, http.StatusBadRequest, "either customer_id or guest is required")
		return
	}

	checkoutReq := checkout.Request{
		DeliveryMode: order.DeliveryMode(req.DeliveryMode),
		PayOnPickup:  req.PayOnPickup,
	}
	if req.CustomerID != nil {
		id, err := uuid.FromString(*req.CustomerID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		checkoutReq.CustomerID = &id
	}
	if req.Guest != nil {
		checkoutReq.Guest = &order.GuestContact{Name: req.Guest.Name, Email: req.Guest.Email, Phone: req.Guest.Phone}
	}
	if req.Proof != nil {
		asset, err := req.Proof.asset()
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid proof payload")
			return
		}
		checkoutReq.Proof = &asset
	}

	_, s := h.cartStore(r)
	orch := checkout.New(s, h.client)

	created, err := orch.Submit(r.Context(), checkoutReq)
	if err != nil {
		// the upload-failed case still created an order; return it alongside
		if created != nil {
			respondWithJSON(w, http.StatusCreated, CheckoutResponse{Order: created, ProofFailed: true})
			return
		}
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, CheckoutResponse{Order: created})
}

func (h *StorefrontHandler) handleRetryProof(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "orderID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var payload ProofPayload
	if !decodeAndValidate(w, r, h.validate, &payload) {
		return
	}
	asset, err := payload.asset()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid proof payload")
		return
	}

	orch := checkout.New(nil, h.client) // no cart involved in a proof retry
	if err := orch.RetryProofUpload(r.Context(), orderID, asset); err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "attached"})
}

type TrackingResponse struct {
	OrderID  string             `json:"order_id"`
	Status   order.Status       `json:"status"`
	Timeline tracking.Timeline  `json:"timeline"`
	Phases   tracking.PhaseView `json:"phases"`
}

func (h *StorefrontHandler) handleTracking(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "orderID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.client.GetOrder(r.Context(), orderID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, TrackingResponse{
		OrderID: o.ID.String(),
		Status:  o.Status,
		Timeline: tracking.Project(tracking.ProjectionInput{
			Status:     o.Status,
			Mode:       o.DeliveryMode,
			PickupCode: o.PickupCode,
			CreatedAt:  o.CreatedAt,
			UpdatedAt:  o.UpdatedAt,
		}),
		Phases: tracking.Classify(o.Status, o.DeliveryMode),
	})
}
