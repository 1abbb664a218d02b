package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nvillanueva/detalia/internal/order"
)

// OrderFetcher is the read slice of the order-persistence contract the poller
// needs.
type OrderFetcher interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// Poller re-fetches one order on a fixed interval and hands each result to
// the callback. Best effort: fetch errors are logged and the next tick tries
// again; delivery order is last-fetch-wins. Stop releases the ticker; the
// poller holds no other resources.
type Poller struct {
	fetch    OrderFetcher
	orderID  uuid.UUID
	interval time.Duration
	onUpdate func(*order.Order)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewPoller(fetch OrderFetcher, orderID uuid.UUID, interval time.Duration, onUpdate func(*order.Order)) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		fetch:    fetch,
		orderID:  orderID,
		interval: interval,
		onUpdate: onUpdate,
	}
}

// Start begins polling. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.stopped = make(chan struct{})

	go p.run(ctx, p.stopped)
}

// Stop halts polling and waits for the loop to exit. Safe to call more than
// once and safe to call on a never-started poller.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, stopped := p.cancel, p.stopped
	p.cancel = nil
	p.stopped = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (p *Poller) run(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	o, err := p.fetch.GetOrder(ctx, p.orderID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Stringer("order_id", p.orderID).Msg("tracking: poll failed, will retry next tick")
		return
	}
	p.onUpdate(o)
}
