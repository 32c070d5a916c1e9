// Package push publica notificaciones de sistema en un exchange fanout.
// Es best-effort: las fallas se registran y no frenan la progresión.
package push

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const exchangeName = "push_notifications"

type Publisher struct {
	ch  *amqp091.Channel
	log *zap.Logger
}

type message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

func NewPublisher(ch *amqp091.Channel, log *zap.Logger) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		exchangeName,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, log: log}, nil
}

func (p *Publisher) Schedule(ctx context.Context, title, body string, data map[string]string) error {
	payload, err := json.Marshal(message{Title: title, Body: body, Data: data})
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx,
		exchangeName,
		"",
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}
