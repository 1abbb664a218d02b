package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvillanueva/detalia/internal/order"
)

type mockRepository struct {
	getOrderFunc     func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	updateStatusFunc func(ctx context.Context, id uuid.UUID, status order.Status) error
}

func (m *mockRepository) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getOrderFunc(ctx, id)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	return m.updateStatusFunc(ctx, id, status)
}

type recordingNotifier struct {
	calls []order.Status
}

func (n *recordingNotifier) StatusChanged(_ context.Context, o *order.Order, _ order.Status) {
	n.calls = append(n.calls, o.Status)
}

func testOrder(status order.Status) *order.Order {
	id, _ := uuid.FromString("550e8400-e29b-41d4-a716-446655440000")
	return &order.Order{
		ID:           id,
		Status:       status,
		Total:        decimal.RequireFromString("58.00"),
		DeliveryMode: order.ModeDelivery,
	}
}

func TestService_RequestStatusChange(t *testing.T) {
	orderID := testOrder(order.StatusPendiente).ID
	repoErr := errors.New("connection refused")

	tests := []struct {
		name         string
		current      order.Status
		requested    order.Status
		getErr       error
		updateErr    error
		wantErrIs    error
		wantNotified bool
	}{
		{
			name:         "legal_transition_persists_and_notifies",
			current:      order.StatusPendiente,
			requested:    order.StatusEnEjecucion,
			wantNotified: true,
		},
		{
			name:      "illegal_transition_rejected",
			current:   order.StatusPendiente,
			requested: order.StatusCompletado,
			wantErrIs: order.ErrIllegalTransition,
		},
		{
			name:      "same_status_rejected",
			current:   order.StatusEnEjecucion,
			requested: order.StatusEnEjecucion,
			wantErrIs: order.ErrIllegalTransition,
		},
		{
			name:      "order_not_found",
			current:   order.StatusPendiente,
			requested: order.StatusEnEjecucion,
			getErr:    order.ErrOrderNotFound,
			wantErrIs: order.ErrOrderNotFound,
		},
		{
			name:      "persist_failure_surfaced",
			current:   order.StatusTerminado,
			requested: order.StatusCompletado,
			updateErr: repoErr,
			wantErrIs: repoErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				getOrderFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
					if tt.getErr != nil {
						return nil, tt.getErr
					}
					return testOrder(tt.current), nil
				},
				updateStatusFunc: func(ctx context.Context, id uuid.UUID, status order.Status) error {
					return tt.updateErr
				},
			}
			notifier := &recordingNotifier{}
			svc := order.NewService(repo, notifier)

			updated, err := svc.RequestStatusChange(context.Background(), orderID, tt.requested)

			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Empty(t, notifier.calls, "failed transitions must not notify")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.requested, updated.Status)
			if tt.wantNotified {
				require.Len(t, notifier.calls, 1)
				assert.Equal(t, tt.requested, notifier.calls[0])
			}
		})
	}
}

func TestService_GetOrder(t *testing.T) {
	repo := &mockRepository{
		getOrderFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return nil, order.ErrOrderNotFound
		},
	}
	svc := order.NewService(repo, nil)

	_, err := svc.GetOrder(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
