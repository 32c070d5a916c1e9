// setup.go
package rabbit

import (
	"storefront-shipping-service/internal/service"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func SetupConsumers(ch *amqp091.Channel, svc *service.OrderService, log *zap.Logger) {
	consumer := NewPlaceOrderConsumer(svc, log)

	// 1. Declarar la queue
	q, err := ch.QueueDeclare(
		"storefront_shipping_orders", // cola exclusiva de este servicio
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("error declarando queue", zap.Error(err))
		return
	}

	// 2. Bindear al exchange fanout
	err = ch.QueueBind(
		q.Name,
		"",             // fanout ignora routing key
		"order_placed", // el exchange correcto
		false,
		nil,
	)
	if err != nil {
		log.Error("error binding exchange", zap.Error(err))
		return
	}

	// 3. Consumir
	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("error al consumir queue", zap.Error(err))
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	log.Info("suscrito a exchange order_placed (fanout)")
}
