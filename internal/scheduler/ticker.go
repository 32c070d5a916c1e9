// Package scheduler contiene los dos drivers temporales de la progresión de
// envío: el ticker global y el poller por orden. Ambos reconcilian contra el
// estado persistido; la seguridad ante solapamientos viene de la regla de
// tiempo del motor y de la idempotencia del ledger, no de locks.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"storefront-shipping-service/internal/model"
	"storefront-shipping-service/internal/repository"
	"storefront-shipping-service/internal/service"

	"go.uber.org/zap"
)

// OrderStore son las operaciones de órdenes que necesitan los drivers.
type OrderStore interface {
	GetAll(ctx context.Context) ([]model.Order, error)
	GetByID(ctx context.Context, orderID string) (*model.Order, error)
	Update(ctx context.Context, orderID string, patch repository.OrderPatch) (*model.Order, error)
}

// Notifier es la primitiva idempotente del ledger.
type Notifier interface {
	Ensure(ctx context.Context, req service.EnsureRequest) (*model.NotificationRecord, error)
}

// Ticker recorre todas las órdenes en cada tick y aplica el motor sobre las
// no terminales. Vive mientras dure la sesión autenticada y verificada.
type Ticker struct {
	orders   OrderStore
	engine   *service.Engine
	ledger   Notifier
	session  service.Session
	log      *zap.Logger
	interval time.Duration

	inFlight  atomic.Bool
	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewTicker(
	orders OrderStore,
	engine *service.Engine,
	ledger Notifier,
	session service.Session,
	log *zap.Logger,
	interval time.Duration,
) *Ticker {
	return &Ticker{
		orders:   orders,
		engine:   engine,
		ledger:   ledger,
		session:  session,
		log:      log,
		interval: interval,
	}
}

// Start lanza el loop del ticker. Dispara un tick inmediato y luego uno por
// intervalo hasta Stop o cancelación del contexto padre.
func (t *Ticker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		t.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Tick(ctx)
			}
		}
	}()
}

// Stop corta el timer y marca la cancelación para que un tick en vuelo no
// siga mutando estado ni emitiendo notificaciones.
func (t *Ticker) Stop() {
	t.cancelled.Store(true)
	if t.cancel != nil {
		t.cancel()
	}
	if t.done != nil {
		<-t.done
	}
}

// Tick ejecuta una pasada completa. Si ya hay una en vuelo, el disparo se
// descarta (no se encola): el próximo tick levanta el backlog desde el
// estado persistido.
func (t *Ticker) Tick(ctx context.Context) {
	if !t.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer t.inFlight.Store(false)

	if t.cancelled.Load() {
		return
	}
	if !t.session.IsAuthenticated(ctx) || !t.session.IsEmailVerified(ctx) {
		return
	}

	orders, err := t.orders.GetAll(ctx)
	if err != nil {
		t.log.Error("tick: fallo leyendo órdenes", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	for _, order := range orders {
		if t.cancelled.Load() {
			return
		}
		if order.ID == "" {
			continue
		}

		next, advanced := t.engine.Evaluate(order, now)
		if !advanced {
			continue
		}

		patch := repository.OrderPatch{
			Shipping: &repository.ShippingPatch{
				Status:    &next.Shipping.Status,
				StepIndex: &next.Shipping.StepIndex,
			},
		}
		if _, err := t.orders.Update(ctx, order.ID, patch); err != nil {
			t.log.Error("tick: fallo actualizando orden", zap.String("orderId", order.ID), zap.Error(err))
			return
		}

		for _, n := range service.NoticesFor(next.Shipping.Status) {
			_, err := t.ledger.Ensure(ctx, service.EnsureRequest{
				OrderID: order.ID,
				Type:    n.Type,
				Title:   n.Title,
				Body:    n.Body,
			})
			if err != nil {
				t.log.Error("tick: fallo notificando", zap.String("orderId", order.ID), zap.Error(err))
				return
			}
		}

		t.log.Info("envío avanzado",
			zap.String("orderId", order.ID),
			zap.String("status", next.Shipping.Status),
			zap.Int("stepIndex", next.Shipping.StepIndex))
	}
}
