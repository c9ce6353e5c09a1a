package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/metrics"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/notification"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultStoreTimeout limita cada ida ao banco quando a config não define outro valor.
const DefaultStoreTimeout = 5 * time.Second

// Dependencies reúne o que os UseCases do ciclo de vida precisam.
// Publisher, NotificationStore e Metrics são opcionais.
type Dependencies struct {
	Transactions      gateway.TransactionRepository
	Offers            gateway.OfferRepository
	Notifications     gateway.NotificationRepository
	TxManager         gateway.TransactionManager // Nosso "Unit of Work"
	Publisher         gateway.EventPublisher
	NotificationStore *notification.Store
	Metrics           *metrics.Recorder

	StoreTimeout time.Duration
	// DeepLinkBase monta o link da notificação (ex: https://desk.example.com). Vazio = sem link.
	DeepLinkBase string
	Now          func() time.Time
}

func (d Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// withTimeout aplica o limite de tempo do store. Expirar vira TransportError (retentável).
func (d Dependencies) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storeErr garante que timeout e cancelamento cheguem ao chamador como TransportError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTransport) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &domain.TransportError{Op: op, Err: err}
	}
	return err
}

// eventID é determinístico para o mesmo evento lógico, permitindo dedup no consumidor.
func eventID(parts ...string) string {
	key := ""
	for _, p := range parts {
		key += p + "|"
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// publish envia o evento após o commit. Falha no broker é logada e não derruba a request.
func (d Dependencies) publish(ctx context.Context, routingKey string, event gateway.Event) {
	if d.Publisher == nil {
		return
	}
	event.Type = routingKey
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}
	if err := d.Publisher.Publish(ctx, gateway.LifecycleExchange, routingKey, event); err != nil {
		d.Metrics.PublishError()
		log.Error().Err(err).Str("routing_key", routingKey).Str("transaction_id", event.TransactionID).Msg("Erro ao publicar evento")
	}
}

func transactionEvent(tx *domain.Transaction) gateway.Event {
	return gateway.Event{
		EventID:       eventID("transaction", tx.ID, string(tx.Status)),
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Status:        string(tx.Status),
		Amount:        tx.Amount.Value.String(),
		Currency:      tx.Amount.Currency,
	}
}

func offerEvent(o *domain.Offer) gateway.Event {
	return gateway.Event{
		EventID:       eventID("offer", o.ID, string(o.Status)),
		TransactionID: o.TransactionID,
		OfferID:       o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Amount:        o.Amount.String(),
	}
}

func requireTx(ctx context.Context) (gateway.TransactionObject, error) {
	transactionObject := gateway.TxFromContext(ctx)
	if transactionObject == nil {
		return nil, fmt.Errorf("erro crítico: transação não encontrada no contexto")
	}
	return transactionObject, nil
}

// ownedBy esconde transações de outros usuários: para quem não é dono, a transação não existe.
func ownedBy(tx *domain.Transaction, userID string) error {
	if tx.UserID != userID {
		return &domain.NotFoundError{Entity: "transaction", ID: tx.ID}
	}
	return nil
}
