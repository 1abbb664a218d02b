package cart

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/product"
)

// Store is the cart aggregation engine: the single mutable pre-checkout
// resource. Every mutation is persisted through the Storage and published to
// subscribers.
//
// The dedup key is the product identifier alone. Adding a product that is
// already in the cart merges by summing quantities and keeps the first
// insertion's variant and personalization selection; the later call's
// selection is discarded, not validated against the earlier one.
type Store struct {
	cartID      string
	storage     Storage
	lines       []Line
	memoryOnly  bool
	subscribers []func()
}

// NewStore rehydrates the cart for cartID. A missing cart, unreachable
// storage or a corrupt payload all degrade to an empty cart; rehydration
// never fails the caller.
func NewStore(ctx context.Context, cartID string, storage Storage) *Store {
	s := &Store{cartID: cartID, storage: storage}

	if storage == nil {
		s.memoryOnly = true
		return s
	}

	lines, err := storage.Load(ctx, cartID)
	switch {
	case err == nil:
		s.lines = lines
	case errors.Is(err, ErrNotFound):
		// first visit, nothing to restore
	default:
		log.Warn().Err(err).Str("cart_id", cartID).Msg("cart: failed to rehydrate, starting empty")
	}

	return s
}

// Subscribe registers fn to run after every cart mutation. Listeners recompute
// derived views (totals, badges); they must not mutate the cart re-entrantly.
func (s *Store) Subscribe(fn func()) {
	s.subscribers = append(s.subscribers, fn)
}

// Add inserts a product with the given quantity, merging into an existing
// line for the same product. Quantities below the product minimum are raised
// to it.
func (s *Store) Add(ctx context.Context, p product.Snapshot, quantity int, variants map[string]string, pers *order.Personalization) {
	if quantity < p.MinQuantity() {
		quantity = p.MinQuantity()
	}

	if existing := s.find(p.ID); existing != nil {
		existing.Quantity += quantity
		s.commit(ctx)
		return
	}

	s.lines = append(s.lines, Line{
		Product:         p,
		Quantity:        quantity,
		Variants:        variants,
		Personalization: pers,
		UnitPrice:       unitPriceFor(p, pers),
	})
	s.commit(ctx)
}

// Remove deletes the line for productID, if present.
func (s *Store) Remove(ctx context.Context, productID string) {
	for i, line := range s.lines {
		if line.Product.ID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.commit(ctx)
			return
		}
	}
}

// Increase bumps the line's quantity by one.
func (s *Store) Increase(ctx context.Context, productID string) {
	if line := s.find(productID); line != nil {
		line.Quantity++
		s.commit(ctx)
	}
}

// Decrease lowers the line's quantity by one. A line already sitting at the
// product's minimum-order-quantity floor is removed instead of dropping below
// it, so Decrease doubles as removal for single-unit lines.
func (s *Store) Decrease(ctx context.Context, productID string) {
	line := s.find(productID)
	if line == nil {
		return
	}

	if line.Quantity-1 < line.Product.MinQuantity() {
		s.Remove(ctx, productID)
		return
	}

	line.Quantity--
	s.commit(ctx)
}

// Clear empties the cart. Called on logout and on successful checkout.
func (s *Store) Clear(ctx context.Context) {
	s.lines = nil
	if s.storage != nil && !s.memoryOnly {
		if err := s.storage.Delete(ctx, s.cartID); err != nil {
			log.Warn().Err(err).Str("cart_id", s.cartID).Msg("cart: failed to delete persisted cart")
		}
	}
	s.publish()
}

// Lines returns a copy of the cart contents in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// IsEmpty reports whether the cart holds no lines.
func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}

// TotalPrice sums unit price times quantity over all lines.
func (s *Store) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (s *Store) find(productID string) *Line {
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			return &s.lines[i]
		}
	}
	return nil
}

// commit persists the full line list and notifies subscribers. A failed save
// flips the store to in-memory-only for the rest of the session instead of
// surfacing an error.
func (s *Store) commit(ctx context.Context) {
	if s.storage != nil && !s.memoryOnly {
		if err := s.storage.Save(ctx, s.cartID, s.lines); err != nil {
			log.Warn().Err(err).Str("cart_id", s.cartID).Msg("cart: persistence unavailable, continuing in memory")
			s.memoryOnly = true
		}
	}
	s.publish()
}

func (s *Store) publish() {
	for _, fn := range s.subscribers {
		fn()
	}
}
