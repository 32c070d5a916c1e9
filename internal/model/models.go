// models.go
package model

import "time"

// Secuencia fija de estados de envío, en orden de progresión.
var ShippingSteps = []string{"Preparando", "Despachado", "En camino", "En la puerta", "Entregado"}

// Estado final: una orden entregada nunca vuelve a mutar.
const StatusDelivered = "Entregado"

// Tipos de notificación asociados a una orden
const (
	NotificationPreparing  = "preparing"
	NotificationDispatched = "dispatched"
	NotificationOnTheWay   = "on_the_way"
	NotificationDoor       = "door"
	NotificationDelivered  = "delivered"
	NotificationRate       = "rate"
)

var orderNotificationTypes = map[string]bool{
	NotificationPreparing:  true,
	NotificationDispatched: true,
	NotificationOnTheWay:   true,
	NotificationDoor:       true,
	NotificationDelivered:  true,
	NotificationRate:       true,
}

// IsOrderNotificationType indica si el tipo participa de la clave de
// deduplicación (orderId, type) del ledger.
func IsOrderNotificationType(t string) bool {
	return orderNotificationTypes[t]
}

type Order struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Items     []OrderItem   `json:"items"`
	Total     float64       `json:"total"`
	Address   *Address      `json:"address"`
	AddressID string        `json:"addressId,omitempty"`
	Shipping  ShippingState `json:"shipping"`
}

type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ShippingState es el sub-registro de envío embebido en la orden.
// Invariante: Status == ShippingSteps[StepIndex].
type ShippingState struct {
	Status    string    `json:"status"`
	StepIndex int       `json:"stepIndex"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize repara sub-registros malformados: un StepIndex fuera de rango
// se trata como 0 y un Status vacío se deriva del índice.
func (s *ShippingState) Normalize() {
	if s.StepIndex < 0 || s.StepIndex >= len(ShippingSteps) {
		s.StepIndex = 0
	}
	if s.Status == "" {
		s.Status = ShippingSteps[s.StepIndex]
	}
}

// Delivered indica si el envío alcanzó el estado final.
func (s ShippingState) Delivered() bool {
	return s.Status == StatusDelivered
}

// Dirección snapshoteada al momento de la compra. Nunca se vuelve a consultar.
type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	Comments   string `json:"comments"`
}

type NotificationRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	OrderID   string    `json:"orderId,omitempty"`
	Type      string    `json:"type,omitempty"`
}

// Preferencias del usuario, leídas antes de crear o reenviar notificaciones.
type Preferences struct {
	Email        bool `json:"email"`
	Push         bool `json:"push"`
	Promotions   bool `json:"promotions"`
	OrderUpdates bool `json:"orderUpdates"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Email:        true,
		Push:         true,
		Promotions:   true,
		OrderUpdates: true,
	}
}
