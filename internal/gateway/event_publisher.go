package gateway

import (
	"context"
	"time"
)

const LifecycleExchange = "otc_events"

// Event é o envelope publicado no broker. EventID é estável por evento lógico
// para que consumidores possam descartar reentregas.
type Event struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id"`
	OfferID       string    `json:"offer_id,omitempty"`
	UserID        string    `json:"user_id"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// EventDeduplicator lembra quais eventos já foram processados.
type EventDeduplicator interface {
	// FirstSeen devolve true apenas na primeira vez que a chave aparece dentro do TTL.
	FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget libera a chave quando o processamento falhou e a mensagem volta para a fila.
	Forget(ctx context.Context, key string) error
}

// AuditRepository grava a trilha de auditoria dos eventos consumidos.
type AuditRepository interface {
	// Save deve tratar EventID repetido como sucesso.
	Save(ctx context.Context, event Event) error
}
