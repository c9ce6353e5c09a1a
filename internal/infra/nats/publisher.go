// Package nats é o transporte alternativo de eventos (EVENT_BROKER=nats).
// O subject é "<exchange>.<routing key>", espelhando os tópicos do RabbitMQ.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// QueueGroup divide as mensagens entre as réplicas do worker.
const QueueGroup = "audit_worker"

func Subject(exchange, routingKey string) string {
	return exchange + "." + routingKey
}

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := nats.NewMsg(Subject(exchange, routingKey))
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = bytes
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Info().Str("subject", msg.Subject).Msg("Evento publicado no NATS")
	return nil
}
