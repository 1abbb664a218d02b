package tracking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvillanueva/detalia/internal/order"
	"github.com/nvillanueva/detalia/internal/tracking"
)

type stubFetcher struct {
	mu     sync.Mutex
	orders []*order.Order
	errs   []error
	calls  int
}

func (s *stubFetcher) GetOrder(context.Context, uuid.UUID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.orders) {
		return s.orders[i], nil
	}
	return s.orders[len(s.orders)-1], nil
}

func TestPoller_DeliversLastFetchWins(t *testing.T) {
	fetcher := &stubFetcher{orders: []*order.Order{
		{Status: order.StatusPendiente},
		{Status: order.StatusEnEjecucion},
	}}

	var mu sync.Mutex
	var seen []order.Status

	p := tracking.NewPoller(fetcher, uuid.Nil, 10*time.Millisecond, func(o *order.Order) {
		mu.Lock()
		seen = append(seen, o.Status)
		mu.Unlock()
	})

	p.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, order.StatusPendiente, seen[0], "first poll fires immediately")
	assert.Equal(t, order.StatusEnEjecucion, seen[len(seen)-1])
}

func TestPoller_FetchErrorsAreSkipped(t *testing.T) {
	fetcher := &stubFetcher{
		errs:   []error{errors.New("timeout"), nil},
		orders: []*order.Order{nil, {Status: order.StatusTerminado}},
	}

	var mu sync.Mutex
	var seen []order.Status

	p := tracking.NewPoller(fetcher, uuid.Nil, 10*time.Millisecond, func(o *order.Order) {
		mu.Lock()
		seen = append(seen, o.Status)
		mu.Unlock()
	})

	p.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, order.StatusTerminado, seen[0], "failed poll skipped, next tick delivered")
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	fetcher := &stubFetcher{orders: []*order.Order{{Status: order.StatusPendiente}}}
	p := tracking.NewPoller(fetcher, uuid.Nil, 10*time.Millisecond, func(*order.Order) {})

	p.Stop() // never started

	p.Start(context.Background())
	p.Start(context.Background()) // second start is a no-op
	p.Stop()
	p.Stop()

	// restartable after stop
	p.Start(context.Background())
	p.Stop()
}

func TestPoller_NoDeliveryAfterStop(t *testing.T) {
	fetcher := &stubFetcher{orders: []*order.Order{{Status: order.StatusPendiente}}}

	var mu sync.Mutex
	count := 0
	p := tracking.NewPoller(fetcher, uuid.Nil, 10*time.Millisecond, func(*order.Order) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	p.Start(context.Background())
	time.Sleep(25 * time.Millisecond)
	p.Stop()

	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, count, "no callbacks may fire after Stop returns")
}
