package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"storefront-shipping-service/internal/repository"
	"storefront-shipping-service/internal/service"

	"go.uber.org/zap"
)

// Poller re-chequea una orden puntual mientras su vista de seguimiento está
// activa. Solo lee y reconcilia notificaciones para el estado actual; nunca
// avanza el envío, eso es exclusivo del ticker global.
type Poller struct {
	orderID  string
	orders   OrderStore
	ledger   Notifier
	log      *zap.Logger
	interval time.Duration

	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewPoller(orderID string, orders OrderStore, ledger Notifier, log *zap.Logger, interval time.Duration) *Poller {
	return &Poller{
		orderID:  orderID,
		orders:   orders,
		ledger:   ledger,
		log:      log,
		interval: interval,
	}
}

func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.Reconcile(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Reconcile(ctx)
			}
		}
	}()
}

func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		<-p.done
	}
}

// Reconcile asegura la notificación del estado actual de la orden. Con su
// propio guard de vuelo: un disparo mientras otro corre se descarta.
func (p *Poller) Reconcile(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	order, err := p.orders.GetByID(ctx, p.orderID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			p.log.Error("poll: fallo leyendo orden", zap.String("orderId", p.orderID), zap.Error(err))
		}
		return
	}

	for _, n := range service.NoticesFor(order.Shipping.Status) {
		_, err := p.ledger.Ensure(ctx, service.EnsureRequest{
			OrderID: order.ID,
			Type:    n.Type,
			Title:   n.Title,
			Body:    n.Body,
		})
		if err != nil {
			p.log.Error("poll: fallo notificando", zap.String("orderId", p.orderID), zap.Error(err))
			return
		}
	}
}
