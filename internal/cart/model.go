package cart

import (
	"github.com/shopspring/decimal"

	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/product"
)

// Line is one product in the cart. The full product snapshot travels with the
// line so prices and variant metadata survive catalog changes; the server
// re-validates pricing at checkout.
//
// UnitPrice is computed once, when the product enters the cart: base price
// plus the flat personalization surcharge if any personalization field is set.
type Line struct {
	Product         product.Snapshot       `json:"product"`
	Quantity        int                    `json:"quantity"`
	Variants        map[string]string      `json:"variants,omitempty"`
	Personalization *order.Personalization `json:"personalization,omitempty"`
	UnitPrice       decimal.Decimal        `json:"unit_price"`
}

// Subtotal is quantity times the line's unit price, falling back to the
// product base price when no computed price was attached at insertion time.
func (l Line) Subtotal() decimal.Decimal {
	return l.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// EffectiveUnitPrice is the line's computed unit price, or the product base
// price when no price was attached at insertion time.
func (l Line) EffectiveUnitPrice() decimal.Decimal {
	if l.UnitPrice.IsZero() && !l.Product.BasePrice.IsZero() {
		return l.Product.BasePrice
	}
	return l.UnitPrice
}

// unitPriceFor derives the insertion-time unit price for a product and its
// personalization.
func unitPriceFor(p product.Snapshot, pers *order.Personalization) decimal.Decimal {
	price := p.BasePrice
	if pers != nil && pers.IsSet() {
		price = price.Add(p.Custom.Surcharge)
	}
	return price
}
