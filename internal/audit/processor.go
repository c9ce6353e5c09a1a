// Package audit processa os eventos do ciclo de vida consumidos pelo worker.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/rs/zerolog/log"
)

// Outcome diz ao transporte o que fazer com a mensagem.
type Outcome int

const (
	Ack Outcome = iota
	// Drop descarta a mensagem (Nack sem requeue). Reenviar não vai consertar.
	Drop
	// Requeue devolve a mensagem para a fila (Nack com requeue).
	Requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	case Requeue:
		return "requeue"
	}
	return "unknown"
}

const (
	DefaultDedupTTL    = 24 * time.Hour
	DefaultSaveTimeout = 5 * time.Second
)

type Processor struct {
	audit       gateway.AuditRepository
	dedup       gateway.EventDeduplicator
	dedupTTL    time.Duration
	saveTimeout time.Duration
}

// NewProcessor aceita dedup nil: nesse caso o _id do Mongo é a única barreira contra reentregas.
func NewProcessor(audit gateway.AuditRepository, dedup gateway.EventDeduplicator) *Processor {
	return &Processor{
		audit:       audit,
		dedup:       dedup,
		dedupTTL:    DefaultDedupTTL,
		saveTimeout: DefaultSaveTimeout,
	}
}

// Handle decodifica, deduplica e grava um evento.
func (p *Processor) Handle(ctx context.Context, body []byte) Outcome {
	var event gateway.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error().Err(err).Msg("Erro ao decodificar JSON")
		return Drop
	}
	if event.EventID == "" || event.Type == "" {
		log.Error().Str("body", string(body)).Msg("Evento sem event_id ou type")
		return Drop
	}

	logger := log.With().Str("event_id", event.EventID).Str("type", event.Type).Logger()

	if p.dedup != nil {
		first, err := p.dedup.FirstSeen(ctx, event.EventID, p.dedupTTL)
		if err != nil {
			// Fail open: o Mongo ainda rejeita _id repetido.
			logger.Warn().Err(err).Msg("Falha ao consultar dedup, seguindo sem ele")
		} else if !first {
			logger.Info().Msg("Evento repetido ignorado")
			return Ack
		}
	}

	saveCtx, cancel := context.WithTimeout(ctx, p.saveTimeout)
	defer cancel()
	if err := p.audit.Save(saveCtx, event); err != nil {
		logger.Error().Err(err).Msg("Erro ao salvar no Mongo")
		if p.dedup != nil {
			if err := p.dedup.Forget(ctx, event.EventID); err != nil {
				logger.Warn().Err(err).Msg("Falha ao liberar chave de dedup")
			}
		}
		return Requeue
	}

	logger.Info().Msg("✅ Evento auditado")
	return Ack
}
