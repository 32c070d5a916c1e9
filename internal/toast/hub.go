// Package toast implementa el canal publish/subscribe de toasts in-app:
// suscriptores in-process y clientes websocket. Publicar sin nadie escuchando
// es un no-op.
package toast

import (
	"net/http"
	"sync"

	"storefront-shipping-service/internal/model"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	subs  map[chan model.NotificationRecord]struct{}
	conns map[*websocket.Conn]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs:  make(map[chan model.NotificationRecord]struct{}),
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Subscribe registra un suscriptor in-process y devuelve su canal junto con
// la función para darse de baja.
func (h *Hub) Subscribe() (<-chan model.NotificationRecord, func()) {
	ch := make(chan model.NotificationRecord, 8)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish reparte la notificación a todos los suscriptores. Un suscriptor
// lento pierde el toast en vez de bloquear al ledger; una conexión websocket
// rota se descarta.
func (h *Hub) Publish(record model.NotificationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- record:
		default:
		}
	}

	for conn := range h.conns {
		if err := conn.WriteJSON(record); err != nil {
			h.log.Warn("toast: conexión descartada", zap.Error(err))
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// HandleWS promueve la request a websocket y mantiene la conexión registrada
// hasta que el cliente la cierre.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("toast: upgrade fallido", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()
}
