package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/nvillanueva/detalia/internal/product"
)

// Status is the authoritative lifecycle stage of a placed order. The remote
// order service owns the stored value; this package only decides which moves
// between stages are legal.
type Status string

const (
	StatusNoPagado           Status = "NO_PAGADO"
	StatusPagoEnVerificacion Status = "PAGO_EN_VERIFICACION"
	StatusPendiente          Status = "PENDIENTE"
	StatusEnEjecucion        Status = "EN_EJECUCION"
	StatusTerminado          Status = "TERMINADO"
	StatusCompletado         Status = "COMPLETADO"
	StatusCancelado          Status = "CANCELADO"
)

func (s Status) String() string {
	return string(s)
}

// AllStatuses lists every order status, happy path first, error branch last.
var AllStatuses = []Status{
	StatusNoPagado,
	StatusPagoEnVerificacion,
	StatusPendiente,
	StatusEnEjecucion,
	StatusTerminado,
	StatusCompletado,
	StatusCancelado,
}

// IsTerminal reports whether the order can never change status again.
func (s Status) IsTerminal() bool {
	return s == StatusCompletado || s == StatusCancelado
}

// DeliveryMode selects how the customer receives the order.
type DeliveryMode string

const (
	ModeDelivery DeliveryMode = "DELIVERY"
	ModePickup   DeliveryMode = "PICKUP"
)

func (m DeliveryMode) String() string {
	return string(m)
}

// Personalization is the customer-supplied customization attached to a line.
type Personalization struct {
	Text     string `json:"text,omitempty"`
	AssetRef string `json:"asset_ref,omitempty"`
}

// IsSet reports whether any personalization field carries a value.
func (p Personalization) IsSet() bool {
	return p.Text != "" || p.AssetRef != ""
}

// Line is one purchased product inside an order. UnitPrice is a snapshot taken
// at purchase time and includes the personalization surcharge.
type Line struct {
	Product         product.Snapshot  `json:"product"`
	Quantity        int               `json:"quantity"`
	UnitPrice       decimal.Decimal   `json:"unit_price"`
	Variants        map[string]string `json:"variants,omitempty"`
	Personalization *Personalization  `json:"personalization,omitempty"`
}

// GuestContact carries inline contact data for orders placed without an
// account.
type GuestContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Order mirrors the remote order service's record. Created once by checkout,
// mutated only through status transitions, immutable once terminal.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	Guest        *GuestContact   `json:"guest,omitempty"`
	Status       Status          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	DeliveryMode DeliveryMode    `json:"delivery_mode"`
	PickupCode   string          `json:"pickup_code,omitempty"`
	Lines        []Line          `json:"lines"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
