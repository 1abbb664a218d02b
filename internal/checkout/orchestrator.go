package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nvillanueva/detalia/internal/cart"
	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/orderapi"
)

var (
	// ErrEmptyCart blocks checkout of a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOrderCreationFailed fully blocks checkout; the cart is preserved so
	// the customer can retry without re-entering anything.
	ErrOrderCreationFailed = errors.New("order creation failed")
	// ErrUploadFailed means the order was created but the payment proof did
	// not attach. The order stands; the upload is retryable.
	ErrUploadFailed = errors.New("payment proof upload failed")
)

// ValidationError lists the required variant and personalization fields the
// customer left unfilled. Nothing is ever silently defaulted.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "checkout validation failed: missing " + strings.Join(e.Missing, ", ")
}

// Request is everything checkout needs beyond the cart contents. Exactly one
// of CustomerID or Guest identifies the buyer.
type Request struct {
	CustomerID   *uuid.UUID
	Guest        *order.GuestContact
	DeliveryMode order.DeliveryMode
	// PayOnPickup selects the pay-later pickup flow: the order is created
	// directly in PENDIENTE with no payment step.
	PayOnPickup bool
	Proof       *orderapi.ProofAsset
}

// Orchestrator sequences cart contents and customer data into an order.
type Orchestrator struct {
	cart   *cart.Store
	client orderapi.Client
}

func New(cartStore *cart.Store, client orderapi.Client) *Orchestrator {
	return &Orchestrator{cart: cartStore, client: client}
}

// Submit runs checkout end to end: validate, create the order, attach the
// payment proof, clear the cart.
//
// Failure asymmetry, by contract: a creation failure leaves the cart
// untouched and returns no order; a proof-upload failure after creation
// returns both the created order and ErrUploadFailed, since the order is
// valid and the upload can be retried.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*order.Order, error) {
	lines := o.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	if missing := missingFields(lines, req); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	initial := order.StatusNoPagado
	payLater := req.DeliveryMode == order.ModePickup && req.PayOnPickup
	if payLater {
		initial = order.StatusPendiente
	}

	created, err := o.client.CreateOrder(ctx, orderapi.CreateOrderRequest{
		CustomerID:    req.CustomerID,
		Guest:         req.Guest,
		DeliveryMode:  req.DeliveryMode,
		InitialStatus: initial,
		Lines:         toOrderLines(lines),
	})
	if err != nil {
		log.Error().Err(err).Msg("checkout: order creation failed, cart preserved")
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}

	// the order exists now; the cart's job is done whatever happens to the proof
	o.cart.Clear(ctx)

	log.Info().
		Stringer("order_id", created.ID).
		Stringer("status", created.Status).
		Stringer("mode", req.DeliveryMode).
		Msg("checkout: order created")

	if payLater {
		return created, nil
	}

	if err := o.client.AttachPaymentProof(ctx, created.ID, *req.Proof); err != nil {
		log.Warn().Err(err).Stringer("order_id", created.ID).Msg("checkout: proof upload failed, order stands")
		return created, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return created, nil
}

// RetryProofUpload re-attaches a payment proof to an already-created order.
func (o *Orchestrator) RetryProofUpload(ctx context.Context, orderID uuid.UUID, asset orderapi.ProofAsset) error {
	if err := o.client.AttachPaymentProof(ctx, orderID, asset); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return order.ErrOrderNotFound
		}
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return nil
}

// missingFields computes the set of required fields the request leaves
// unfilled: unchosen required variant axes, absent or over-long required
// personalization text, absent required personalization images, and the
// payment proof for prepay flows.
func missingFields(lines []cart.Line, req Request) []string {
	var missing []string

	for _, line := range lines {
		for _, axis := range line.Product.RequiredAxes() {
			if line.Variants[axis] == "" {
				missing = append(missing, line.Product.ID+"."+axis)
			}
		}

		if line.Product.RequiresPersonalizationText() {
			switch {
			case line.Personalization == nil || line.Personalization.Text == "":
				missing = append(missing, line.Product.ID+".personalization_text")
			case len([]rune(line.Personalization.Text)) > line.Product.Custom.MaxTextLength:
				missing = append(missing, line.Product.ID+".personalization_text")
			}
		}

		if line.Product.Custom.RequiresImage {
			if line.Personalization == nil || line.Personalization.AssetRef == "" {
				missing = append(missing, line.Product.ID+".personalization_image")
			}
		}
	}

	payLater := req.DeliveryMode == order.ModePickup && req.PayOnPickup
	if !payLater && req.Proof == nil {
		missing = append(missing, "payment_proof")
	}

	return missing
}

func toOrderLines(lines []cart.Line) []order.Line {
	out := make([]order.Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, order.Line{
			Product:         line.Product,
			Quantity:        line.Quantity,
			UnitPrice:       line.EffectiveUnitPrice(),
			Variants:        line.Variants,
			Personalization: line.Personalization,
		})
	}
	return out
}
