package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	AuditQueue = "audit_queue"
	// ConsumerTag identifica o worker no painel do RabbitMQ.
	ConsumerTag = "audit_worker"
)

// AuditBindings são os tópicos que a fila de auditoria recebe (# é curinga).
var AuditBindings = []string{"transaction.#", "offer.#"}

// DeclareExchange garante que a exchange de tópicos existe. Idempotente.
func DeclareExchange(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// DeclareAuditQueue declara a fila durável e faz o bind de cada tópico.
func DeclareAuditQueue(ch *amqp.Channel, exchange string) (amqp.Queue, error) {
	if err := DeclareExchange(ch, exchange); err != nil {
		return amqp.Queue{}, err
	}

	q, err := ch.QueueDeclare(
		AuditQueue, // name
		true,       // durable (sobrevive a restart do server)
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range AuditBindings {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return amqp.Queue{}, fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}
	return q, nil
}
