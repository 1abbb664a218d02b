package orderapi

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/product"
)

// The remote service speaks minor-unit integers (céntimos); the core works in
// major-unit decimals. Conversion happens here and nowhere else.

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

type guestDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type personalizationDTO struct {
	Text     string `json:"text,omitempty"`
	AssetRef string `json:"asset_ref,omitempty"`
}

type lineDTO struct {
	ProductID       string              `json:"product_id"`
	ProductName     string              `json:"product_name"`
	Quantity        int                 `json:"quantity"`
	UnitPriceCents  int64               `json:"unit_price_cents"`
	Variants        map[string]string   `json:"variants,omitempty"`
	Personalization *personalizationDTO `json:"personalization,omitempty"`
}

type createOrderDTO struct {
	CustomerID   *string   `json:"customer_id,omitempty"`
	Guest        *guestDTO `json:"guest,omitempty"`
	DeliveryMode string    `json:"delivery_mode"`
	Status       string    `json:"status"`
	Lines        []lineDTO `json:"lines"`
	TotalCents   int64     `json:"total_cents"`
}

type orderDTO struct {
	ID           string    `json:"id"`
	CustomerID   *string   `json:"customer_id,omitempty"`
	Guest        *guestDTO `json:"guest,omitempty"`
	Status       string    `json:"status"`
	DeliveryMode string    `json:"delivery_mode"`
	PickupCode   string    `json:"pickup_code,omitempty"`
	TotalCents   int64     `json:"total_cents"`
	Lines        []lineDTO `json:"lines"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toCreateOrderDTO(req CreateOrderRequest) createOrderDTO {
	dto := createOrderDTO{
		DeliveryMode: req.DeliveryMode.String(),
		Status:       req.InitialStatus.String(),
	}

	if req.CustomerID != nil {
		id := req.CustomerID.String()
		dto.CustomerID = &id
	}
	if req.Guest != nil {
		dto.Guest = &guestDTO{Name: req.Guest.Name, Email: req.Guest.Email, Phone: req.Guest.Phone}
	}

	total := decimal.Zero
	for _, line := range req.Lines {
		dto.Lines = append(dto.Lines, toLineDTO(line))
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	dto.TotalCents = toCents(total)

	return dto
}

func toLineDTO(line order.Line) lineDTO {
	dto := lineDTO{
		ProductID:      line.Product.ID,
		ProductName:    line.Product.Name,
		Quantity:       line.Quantity,
		UnitPriceCents: toCents(line.UnitPrice),
		Variants:       line.Variants,
	}
	if line.Personalization != nil {
		dto.Personalization = &personalizationDTO{
			Text:     line.Personalization.Text,
			AssetRef: line.Personalization.AssetRef,
		}
	}
	return dto
}

func fromOrderDTO(dto orderDTO) (*order.Order, error) {
	id, err := uuid.FromString(dto.ID)
	if err != nil {
		return nil, fmt.Errorf("orderapi: invalid order id %q: %w", dto.ID, err)
	}

	o := &order.Order{
		ID:           id,
		Status:       order.Status(dto.Status),
		DeliveryMode: order.DeliveryMode(dto.DeliveryMode),
		PickupCode:   dto.PickupCode,
		Total:        fromCents(dto.TotalCents),
		CreatedAt:    dto.CreatedAt,
		UpdatedAt:    dto.UpdatedAt,
	}

	if dto.CustomerID != nil {
		customerID, err := uuid.FromString(*dto.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("orderapi: invalid customer id %q: %w", *dto.CustomerID, err)
		}
		o.CustomerID = &customerID
	}
	if dto.Guest != nil {
		o.Guest = &order.GuestContact{Name: dto.Guest.Name, Email: dto.Guest.Email, Phone: dto.Guest.Phone}
	}

	for _, line := range dto.Lines {
		o.Lines = append(o.Lines, fromLineDTO(line))
	}

	return o, nil
}

func fromLineDTO(dto lineDTO) order.Line {
	line := order.Line{
		Product:   product.Snapshot{ID: dto.ProductID, Name: dto.ProductName},
		Quantity:  dto.Quantity,
		UnitPrice: fromCents(dto.UnitPriceCents),
		Variants:  dto.Variants,
	}
	if dto.Personalization != nil {
		line.Personalization = &order.Personalization{
			Text:     dto.Personalization.Text,
			AssetRef: dto.Personalization.AssetRef,
		}
	}
	return line
}
