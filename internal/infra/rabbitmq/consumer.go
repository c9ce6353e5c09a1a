package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/audit"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// ErrChannelClosed sinaliza que o broker derrubou o canal. O worker deve cair para ser reiniciado.
var ErrChannelClosed = errors.New("rabbitmq channel closed")

// Acknowledger é a parte da amqp.Delivery que o consumer usa.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Consumer struct {
	channel   *amqp.Channel
	processor *audit.Processor
}

func NewConsumer(ch *amqp.Channel, processor *audit.Processor) *Consumer {
	return &Consumer{channel: ch, processor: processor}
}

// Run consome a fila até o contexto acabar ou o canal cair.
func (c *Consumer) Run(ctx context.Context, queue string) error {
	// Prefetch Count = 1: o RabbitMQ manda uma mensagem por vez e espera o Ack.
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue,       // queue
		ConsumerTag, // consumer tag
		false,       // auto-ack desligado: Ack/Nack manual
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	// Monitoramento de queda de conexão
	notifyClose := c.channel.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-notifyClose:
			if err != nil {
				return fmt.Errorf("%w: %v", ErrChannelClosed, err)
			}
			return ErrChannelClosed
		case d, ok := <-msgs:
			if !ok {
				return ErrChannelClosed
			}
			log.Debug().Str("routing_key", d.RoutingKey).Msg(" [⬇️] Recebido")
			Settle(d, c.processor.Handle(ctx, d.Body))
		}
	}
}

// Settle traduz o resultado do processamento em Ack/Nack.
func Settle(d Acknowledger, outcome audit.Outcome) {
	var err error
	switch outcome {
	case audit.Ack:
		err = d.Ack(false)
	case audit.Requeue:
		err = d.Nack(false, true)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		log.Error().Err(err).Str("outcome", outcome.String()).Msg("Erro ao confirmar mensagem")
	}
}
