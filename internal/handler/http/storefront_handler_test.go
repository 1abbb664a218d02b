package http_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvillanueva/detalia/internal/cart"
	storeHandler "github.com/nvillanueva/detalia/internal/handler/http"
	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/orderapi"
	"github.com/nvillanueva/detalia/internal/product"
)

type stubClient struct {
	createOrderFunc func(ctx context.Context, req orderapi.CreateOrderRequest) (*order.Order, error)
	getOrderFunc    func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	attachProofFunc func(ctx context.Context, id uuid.UUID, asset orderapi.ProofAsset) error
}

func (s *stubClient) CreateOrder(ctx context.Context, req orderapi.CreateOrderRequest) (*order.Order, error) {
	return s.createOrderFunc(ctx, req)
}

func (s *stubClient) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return s.getOrderFunc(ctx, id)
}

func (s *stubClient) UpdateStatus(context.Context, uuid.UUID, order.Status) error {
	return nil
}

func (s *stubClient) AttachPaymentProof(ctx context.Context, id uuid.UUID, asset orderapi.ProofAsset) error {
	if s.attachProofFunc != nil {
		return s.attachProofFunc(ctx, id, asset)
	}
	return nil
}

func storefrontRouter(storage cart.Storage, client orderapi.Client) *chi.Mux {
	router := chi.NewRouter()
	storeHandler.NewStorefrontHandler(storage, client).RegisterRoutes(router)
	return router
}

func tazaSnapshot() product.Snapshot {
	return product.Snapshot{
		ID:        "prod-taza",
		Name:      "Taza personalizada",
		BasePrice: decimal.RequireFromString("25.00"),
	}
}

func addLine(t *testing.T, router *chi.Mux, cartID string, qty int) {
	t.Helper()
	body, err := json.Marshal(storeHandler.AddLineRequest{
		Product:  tazaSnapshot(),
		Quantity: qty,
		Variants: map[string]string{"color": "Rojo"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/carts/"+cartID+"/lines", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestStorefrontHandler_CartFlow(t *testing.T) {
	storage := cart.NewMemoryStorage(0)
	router := storefrontRouter(storage, &stubClient{})

	addLine(t, router, "cart-1", 2)
	addLine(t, router, "cart-1", 3)

	req := httptest.NewRequest(http.MethodGet, "/carts/cart-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp storeHandler.CartResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 1, "same product merges into one line")
	assert.Equal(t, 5, resp.Lines[0].Quantity)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("125.00")))
}

func TestStorefrontHandler_DecreaseToDeletion(t *testing.T) {
	storage := cart.NewMemoryStorage(0)
	router := storefrontRouter(storage, &stubClient{})

	addLine(t, router, "cart-1", 1)

	req := httptest.NewRequest(http.MethodPost, "/carts/cart-1/lines/prod-taza/decrease", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp storeHandler.CartResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Lines)
}

func TestStorefrontHandler_Checkout_Guest(t *testing.T) {
	storage := cart.NewMemoryStorage(0)
	orderID := uuid.Must(uuid.NewV4())
	client := &stubClient{
		createOrderFunc: func(_ context.Context, req orderapi.CreateOrderRequest) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: req.InitialStatus, DeliveryMode: req.DeliveryMode}, nil
		},
	}
	router := storefrontRouter(storage, client)

	addLine(t, router, "cart-1", 1)

	body, _ := json.Marshal(storeHandler.CheckoutRequest{
		Guest:        &storeHandler.GuestPayload{Name: "Ana", Email: "ana@example.com"},
		DeliveryMode: "PICKUP",
		PayOnPickup:  true,
	})
	req := httptest.NewRequest(http.MethodPost, "/carts/cart-1/checkout", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp storeHandler.CheckoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, order.StatusPendiente, resp.Order.Status)
	assert.False(t, resp.ProofFailed)

	// the persisted cart is gone
	_, err := storage.Load(context.Background(), "cart-1")
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestStorefrontHandler_Checkout_MissingFieldsListed(t *testing.T) {
	storage := cart.NewMemoryStorage(0)
	router := storefrontRouter(storage, &stubClient{})

	// product with a required axis, nothing chosen
	body, _ := json.Marshal(storeHandler.AddLineRequest{
		Product: product.Snapshot{
			ID:          "prod-polo",
			BasePrice:   decimal.RequireFromString("45.00"),
			VariantAxes: []product.VariantAxis{{Name: "talla", Values: []string{"S", "M"}, Required: true}},
		},
		Quantity: 1,
	})
	req := httptest.NewRequest(http.MethodPost, "/carts/cart-1/lines", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	checkoutBody, _ := json.Marshal(storeHandler.CheckoutRequest{
		Guest:        &storeHandler.GuestPayload{Name: "Ana", Email: "ana@example.com"},
		DeliveryMode: "DELIVERY",
		Proof: &storeHandler.ProofPayload{
			Filename:    "voucher.jpg",
			ContentType: "image/jpeg",
			Data:        base64.StdEncoding.EncodeToString([]byte("jpg")),
		},
	})
	req = httptest.NewRequest(http.MethodPost, "/carts/cart-1/checkout", bytes.NewReader(checkoutBody))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp storeHandler.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Missing, "prod-polo.talla")
}

func TestStorefrontHandler_Tracking(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	client := &stubClient{
		getOrderFunc: func(_ context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{
				ID:           orderID,
				Status:       order.StatusTerminado,
				DeliveryMode: order.ModePickup,
				PickupCode:   "RC-7431",
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}, nil
		},
	}
	router := storefrontRouter(cart.NewMemoryStorage(0), client)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String()+"/tracking", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp storeHandler.TrackingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, order.StatusTerminado, resp.Status)
	require.NotEmpty(t, resp.Timeline.Steps)
	last := resp.Timeline.Steps[len(resp.Timeline.Steps)-1]
	assert.Equal(t, "Listo para Recojo", last.Label)
	assert.False(t, last.Done)
}

func TestStorefrontHandler_Tracking_NotFound(t *testing.T) {
	client := &stubClient{
		getOrderFunc: func(context.Context, uuid.UUID) (*order.Order, error) {
			return nil, order.ErrOrderNotFound
		},
	}
	router := storefrontRouter(cart.NewMemoryStorage(0), client)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.Must(uuid.NewV4()).String()+"/tracking", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
