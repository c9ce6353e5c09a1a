package mongodb

import (
	"testing"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/stretchr/testify/assert"
)

func TestNewAuditLogUsesEventIDAsPrimaryKey(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	doc := NewAuditLog(gateway.Event{
		EventID:       "evt-1",
		Type:          "offer.resolved",
		TransactionID: "tx-1",
		OfferID:       "offer-1",
		UserID:        "trader",
		Status:        "won",
		Amount:        "1000.5",
		OccurredAt:    at,
	})

	assert.Equal(t, "evt-1", doc.ID)
	assert.Equal(t, "offer.resolved", doc.Type)
	assert.Equal(t, "offer-1", doc.OfferID)
	assert.Equal(t, "1000.5", doc.Amount)
	assert.Equal(t, at, doc.OccurredAt)
	assert.True(t, doc.ProcessedAt.IsZero())
}
