package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
)

// TransactionRepository define o contrato de persistência das operações OTC.
// O banco é a fonte da verdade para as regras de status; as checagens do usecase são consultivas.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// Lock Pessimista: serializa resoluções concorrentes da mesma transação
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Transaction, error)

	// UpdateStatus só aplica se o status atual ainda for 'from'. Caso contrário ConflictError.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) error

	ListByOwner(ctx context.Context, userID string) ([]domain.Transaction, error)

	WithTx(tx TransactionObject) TransactionRepository
}

type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) error
	GetByID(ctx context.Context, id string) (*domain.Offer, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*domain.Offer, error)
	UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error
	WithTx(tx TransactionObject) OfferRepository
}
