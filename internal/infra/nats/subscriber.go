package nats

import (
	"context"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/audit"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// AuditSubjects equivalem aos bindings da audit_queue do RabbitMQ.
func AuditSubjects(exchange string) []string {
	return []string{exchange + ".transaction.>", exchange + ".offer.>"}
}

type Subscriber struct {
	conn      *nats.Conn
	processor *audit.Processor
}

func NewSubscriber(conn *nats.Conn, processor *audit.Processor) *Subscriber {
	return &Subscriber{conn: conn, processor: processor}
}

// Run assina os subjects e bloqueia até o contexto acabar.
// Core NATS não tem requeue: Requeue vira apenas log de erro.
func (s *Subscriber) Run(ctx context.Context, exchange string) error {
	var subs []*nats.Subscription
	defer func() {
		for _, sub := range subs {
			if err := sub.Drain(); err != nil {
				log.Error().Err(err).Str("subject", sub.Subject).Msg("Erro ao drenar assinatura")
			}
		}
	}()

	for _, subject := range AuditSubjects(exchange) {
		sub, err := s.conn.QueueSubscribe(subject, QueueGroup, func(m *nats.Msg) {
			if outcome := s.processor.Handle(ctx, m.Data); outcome != audit.Ack {
				log.Error().Str("subject", m.Subject).Str("outcome", outcome.String()).Msg("Evento não auditado")
			}
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe %s: %w", subject, err)
		}
		subs = append(subs, sub)
	}

	<-ctx.Done()
	return nil
}
