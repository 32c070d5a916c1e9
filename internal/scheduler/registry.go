package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry administra un poller por orden en seguimiento: se crea cuando la
// vista de tracking se activa y se descarta cuando se cierra. Los pollers
// corren sobre el contexto base del registry, no sobre el del request que
// los inició: solo Untrack o StopAll los terminan.
type Registry struct {
	base     context.Context
	orders   OrderStore
	ledger   Notifier
	log      *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	pollers map[string]*Poller
}

func NewRegistry(base context.Context, orders OrderStore, ledger Notifier, log *zap.Logger, interval time.Duration) *Registry {
	return &Registry{
		base:     base,
		orders:   orders,
		ledger:   ledger,
		log:      log,
		interval: interval,
		pollers:  make(map[string]*Poller),
	}
}

// Track arranca el poller de la orden si no está ya corriendo.
func (r *Registry) Track(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pollers[orderID]; ok {
		return
	}
	p := NewPoller(orderID, r.orders, r.ledger, r.log, r.interval)
	p.Start(r.base)
	r.pollers[orderID] = p
}

// Untrack detiene y descarta el poller de la orden, si existe.
func (r *Registry) Untrack(orderID string) {
	r.mu.Lock()
	p, ok := r.pollers[orderID]
	if ok {
		delete(r.pollers, orderID)
	}
	r.mu.Unlock()

	if ok {
		p.Stop()
	}
}

// StopAll corta todos los pollers activos. Se usa en el shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	pollers := make([]*Poller, 0, len(r.pollers))
	for id, p := range r.pollers {
		pollers = append(pollers, p)
		delete(r.pollers, id)
	}
	r.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
}
