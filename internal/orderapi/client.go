// Package orderapi is the HTTP client for the remote order-persistence
// service. The core is a logic layer over this contract: it creates orders,
// reads them back, persists admitted status transitions and attaches payment
// proofs. No retries happen here; retrying is a user action.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gofrs/uuid"

	"github.com/nvillanueva/detalia/internal/order"
)

var (
	// ErrOrderRejected means the remote service refused the order payload.
	ErrOrderRejected = errors.New("order rejected by order service")
	// ErrTransitionRejected means the remote service refused a transition this
	// core had already admitted; the remote copy is authoritative.
	ErrTransitionRejected = errors.New("transition rejected by order service")
)

// ProofAsset is an uploaded payment-proof file.
type ProofAsset struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateOrderRequest carries everything the remote service needs to create an
// order. Exactly one of CustomerID or Guest must be set.
type CreateOrderRequest struct {
	CustomerID    *uuid.UUID
	Guest         *order.GuestContact
	DeliveryMode  order.DeliveryMode
	InitialStatus order.Status
	Lines         []order.Line
}

// Client is the slice of the remote contract the core consumes.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*order.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error
	AttachPaymentProof(ctx context.Context, id uuid.UUID, asset ProofAsset) error
}

type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client against baseURL. token is the service credential for
// admin calls; pass "" for the public storefront surface.
func New(baseURL, token string) Client {
	return &httpClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *httpClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	path := "/orders"
	if req.Guest != nil {
		path = "/orders/guest"
	}

	payload, err := json.Marshal(toCreateOrderDTO(req))
	if err != nil {
		return nil, fmt.Errorf("orderapi: failed to encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("orderapi: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("orderapi: order creation failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		var dto orderDTO
		if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
			return nil, fmt.Errorf("orderapi: failed to decode created order: %w", err)
		}
		return fromOrderDTO(dto)
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrOrderRejected, readError(resp.Body))
	default:
		return nil, fmt.Errorf("orderapi: order creation failed with status %d", resp.StatusCode)
	}
}

func (c *httpClient) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/orders/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("orderapi: failed to build request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("orderapi: failed to fetch order: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var dto orderDTO
		if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
			return nil, fmt.Errorf("orderapi: failed to decode order: %w", err)
		}
		return fromOrderDTO(dto)
	case http.StatusNotFound:
		return nil, order.ErrOrderNotFound
	default:
		return nil, fmt.Errorf("orderapi: fetch order failed with status %d", resp.StatusCode)
	}
}

func (c *httpClient) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	payload, err := json.Marshal(map[string]string{"status": status.String()})
	if err != nil {
		return fmt.Errorf("orderapi: failed to encode status: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, fmt.Sprintf("%s/orders/%s/status", c.baseURL, id), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("orderapi: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("orderapi: failed to persist status: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return order.ErrOrderNotFound
	case http.StatusConflict:
		// two admins raced; the remote service kept the other transition
		return fmt.Errorf("%w: %s", ErrTransitionRejected, readError(resp.Body))
	default:
		return fmt.Errorf("orderapi: persist status failed with status %d", resp.StatusCode)
	}
}

func (c *httpClient) AttachPaymentProof(ctx context.Context, id uuid.UUID, asset ProofAsset) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("proof", asset.Filename)
	if err != nil {
		return fmt.Errorf("orderapi: failed to build upload: %w", err)
	}
	if _, err := part.Write(asset.Data); err != nil {
		return fmt.Errorf("orderapi: failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("orderapi: failed to build upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/orders/%s/proof", c.baseURL, id), &body)
	if err != nil {
		return fmt.Errorf("orderapi: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("orderapi: proof upload failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return order.ErrOrderNotFound
	default:
		return fmt.Errorf("orderapi: proof upload failed with status %d", resp.StatusCode)
	}
}

func (c *httpClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func readError(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error == "" {
		return "no detail"
	}
	return payload.Error
}

// the admin transition service consumes this client through order.Repository
var _ order.Repository = (*httpClient)(nil)
