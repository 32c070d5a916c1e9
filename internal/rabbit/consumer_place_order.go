package rabbit

import (
	"context"
	"encoding/json"

	"storefront-shipping-service/internal/model"
	"storefront-shipping-service/internal/service"

	"go.uber.org/zap"
)

type PlaceOrderConsumer struct {
	Service *service.OrderService
	Log     *zap.Logger
}

func NewPlaceOrderConsumer(s *service.OrderService, log *zap.Logger) *PlaceOrderConsumer {
	return &PlaceOrderConsumer{Service: s, Log: log}
}

// Mensaje del exchange order_placed. Si el JSON no trae dirección queda nil
// y la orden se crea sin snapshot.
type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		UserID    string            `json:"userId"`
		Items     []model.OrderItem `json:"items"`
		Total     float64           `json:"total"`
		Address   *model.Address    `json:"address"`
		AddressID string            `json:"addressId"`
	} `json:"message"`
}

func (c *PlaceOrderConsumer) Handle(msg []byte) error {
	c.Log.Info("evento recibido: order_placed")

	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.Log.Error("mensaje inválido", zap.Error(err))
		return err
	}

	order, err := c.Service.CreateOrder(context.Background(), service.CreateOrderInput{
		Items:     event.Message.Items,
		Total:     event.Message.Total,
		Address:   event.Message.Address,
		AddressID: event.Message.AddressID,
	})
	if err != nil {
		c.Log.Error("fallo creando orden", zap.Error(err))
		return err
	}

	c.Log.Info("orden inicializada", zap.String("orderId", order.ID))
	return nil
}
