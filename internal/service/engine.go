package service

import (
	"time"

	"storefront-shipping-service/internal/model"
)

// Engine decide si una orden avanza al siguiente estado de envío.
// Es una función de decisión pura: no persiste ni notifica.
type Engine struct {
	advanceInterval time.Duration
}

func NewEngine(advanceInterval time.Duration) *Engine {
	return &Engine{advanceInterval: advanceInterval}
}

// Evaluate devuelve la orden resultante y si hubo transición.
// Reglas:
//   - una orden entregada nunca cambia;
//   - solo avanza si pasó el intervalo desde la última transición;
//   - avanza exactamente un paso por evaluación, aunque haya pasado más
//     tiempo (sin catch-up multi-paso);
//   - el índice se satura en el último estado.
func (e *Engine) Evaluate(order model.Order, now time.Time) (model.Order, bool) {
	order.Shipping.Normalize()

	if order.Shipping.Delivered() {
		return order, false
	}

	elapsed := now.Sub(order.Shipping.UpdatedAt)
	if elapsed < e.advanceInterval {
		return order, false
	}

	nextIndex := order.Shipping.StepIndex + 1
	if last := len(model.ShippingSteps) - 1; nextIndex > last {
		nextIndex = last
	}

	order.Shipping = model.ShippingState{
		Status:    model.ShippingSteps[nextIndex],
		StepIndex: nextIndex,
		UpdatedAt: now,
	}
	order.UpdatedAt = now
	return order, true
}

// Notice es el contenido de la notificación asociada a un estado de envío.
type Notice struct {
	Type  string
	Title string
	Body  string
}

var statusNotices = map[string]Notice{
	"Preparando":   {Type: model.NotificationPreparing, Title: "Pedido confirmado", Body: "Estamos preparando tu pedido"},
	"Despachado":   {Type: model.NotificationDispatched, Title: "Pedido despachado", Body: "Tu pedido fue despachado"},
	"En camino":    {Type: model.NotificationOnTheWay, Title: "En camino", Body: "Tu pedido está en camino"},
	"En la puerta": {Type: model.NotificationDoor, Title: "Repartidor", Body: "El repartidor está en la puerta"},
	"Entregado":    {Type: model.NotificationDelivered, Title: "Entrega exitosa", Body: "Gracias por tu compra!"},
}

var rateNotice = Notice{
	Type:  model.NotificationRate,
	Title: "¿Cómo fue tu compra?",
	Body:  "Calificá tu pedido con estrellas",
}

// NoticesFor devuelve las notificaciones que corresponden a un estado.
// La entrega produce dos: la confirmación y el pedido de calificación.
func NoticesFor(status string) []Notice {
	n, ok := statusNotices[status]
	if !ok {
		return nil
	}
	if status == model.StatusDelivered {
		return []Notice{n, rateNotice}
	}
	return []Notice{n}
}
