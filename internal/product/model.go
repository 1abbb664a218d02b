package product

import (
	"github.com/shopspring/decimal"
)

// Snapshot is the full product state captured when a product enters a cart.
// Prices and variant metadata travel with the cart line so the cart stays
// renderable even if the catalog entry changes afterwards. The server re-checks
// prices at checkout.
type Snapshot struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	BasePrice   decimal.Decimal     `json:"base_price"`
	MinOrderQty int                 `json:"min_order_qty"`
	VariantAxes []VariantAxis       `json:"variant_axes,omitempty"`
	Custom      PersonalizationMeta `json:"personalization"`
}

// VariantAxis is one configurable product dimension (e.g. color, size) with a
// closed set of values.
type VariantAxis struct {
	Name     string   `json:"name"`
	Values   []string `json:"values"`
	Required bool     `json:"required"`
}

// PersonalizationMeta describes what customization a product accepts and what
// it costs. Surcharge is a flat per-unit add-on.
type PersonalizationMeta struct {
	Surcharge     decimal.Decimal `json:"surcharge"`
	MaxTextLength int             `json:"max_text_length"`
	RequiresImage bool            `json:"requires_image"`
}

// MinQuantity returns the order-quantity floor, never less than 1.
func (s Snapshot) MinQuantity() int {
	if s.MinOrderQty < 1 {
		return 1
	}
	return s.MinOrderQty
}

// RequiredAxes returns the names of variant axes that must be chosen before
// checkout.
func (s Snapshot) RequiredAxes() []string {
	var names []string
	for _, axis := range s.VariantAxes {
		if axis.Required {
			names = append(names, axis.Name)
		}
	}
	return names
}

// AllowsPersonalization reports whether the product accepts any customization.
func (s Snapshot) AllowsPersonalization() bool {
	return s.Custom.MaxTextLength > 0 || s.Custom.RequiresImage
}

// RequiresPersonalizationText reports whether a non-empty personalization text
// must accompany the product at checkout.
func (s Snapshot) RequiresPersonalizationText() bool {
	return s.Custom.MaxTextLength > 0
}
