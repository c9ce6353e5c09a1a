package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AuditLog representa o documento que será salvo no Mongo.
// Usamos tags 'bson' em vez de 'json'.
type AuditLog struct {
	ID            string    `bson:"_id"` // event_id: reentregas colidem na chave primária
	Type          string    `bson:"type"`
	TransactionID string    `bson:"transaction_id"`
	OfferID       string    `bson:"offer_id,omitempty"`
	UserID        string    `bson:"user_id"`
	Status        string    `bson:"status"`
	Amount        string    `bson:"amount,omitempty"`
	Currency      string    `bson:"currency,omitempty"`
	OccurredAt    time.Time `bson:"occurred_at"`
	ProcessedAt   time.Time `bson:"processed_at"`
}

// NewAuditLog converte o envelope do broker no documento de auditoria.
func NewAuditLog(event gateway.Event) AuditLog {
	return AuditLog{
		ID:            event.EventID,
		Type:          event.Type,
		TransactionID: event.TransactionID,
		OfferID:       event.OfferID,
		UserID:        event.UserID,
		Status:        event.Status,
		Amount:        event.Amount,
		Currency:      event.Currency,
		OccurredAt:    event.OccurredAt,
	}
}

type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(client *mongo.Client, dbName string) *AuditRepository {
	// Cria/Obtém a collection "audit_logs"
	collection := client.Database(dbName).Collection("audit_logs")
	return &AuditRepository{collection: collection}
}

func (r *AuditRepository) Save(ctx context.Context, event gateway.Event) error {
	doc := NewAuditLog(event)
	// Adiciona timestamp de processamento
	doc.ProcessedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil // já auditado
	}
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
