package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var ErrOrderNotFound = errors.New("order not found")

// Repository is the slice of the remote order-persistence contract the
// transition service needs. The HTTP implementation lives in
// internal/orderapi.
type Repository interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// Notifier dispatches a customer-facing notification after an admitted
// transition. Content and channel are the implementation's concern.
type Notifier interface {
	StatusChanged(ctx context.Context, o *Order, previous Status)
}

// LogNotifier is the default Notifier: it only records that a notification
// is due. Real dispatch (mail, push) is wired by the embedding application.
type LogNotifier struct{}

func (LogNotifier) StatusChanged(_ context.Context, o *Order, previous Status) {
	log.Info().
		Stringer("order_id", o.ID).
		Stringer("from", previous).
		Stringer("to", o.Status).
		Msg("order status notification due")
}

// Service applies admin-requested status transitions: fetch the current
// order, run the transition guard, persist the admitted move, dispatch the
// notification.
type Service interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	RequestStatusChange(ctx context.Context, id uuid.UUID, requested Status) (*Order, error)
}

type service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &service{repo: repo, notifier: notifier}
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	return o, nil
}

func (s *service) RequestStatusChange(ctx context.Context, id uuid.UUID, requested Status) (*Order, error) {
	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Stringer("requested", requested).Msg("service: order not found, cannot change status")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status change")
		return nil, fmt.Errorf("service: failed to get order for status change: %w", err)
	}

	result, err := RequestTransition(current.Status, requested)
	if err != nil {
		log.Warn().
			Stringer("order_id", id).
			Stringer("current", current.Status).
			Stringer("requested", requested).
			Msg("service: illegal status transition attempt")
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, result.Next); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("requested", requested).Msg("service: failed to persist status change")
		return nil, fmt.Errorf("service: failed to persist status change: %w", err)
	}

	previous := current.Status
	current.Status = result.Next

	if result.Notify {
		s.notifier.StatusChanged(ctx, current, previous)
	}

	log.Info().
		Stringer("order_id", id).
		Stringer("from", previous).
		Stringer("to", current.Status).
		Msg("service: order status updated")

	return current, nil
}
