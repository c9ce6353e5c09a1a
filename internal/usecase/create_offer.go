package usecase

import (
	"context"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOfferInput struct {
	TransactionID string
	UserID        string
	Amount        decimal.Decimal
	ETAMinutes    int
	Notes         string
}

type CreateOfferUseCase struct {
	deps Dependencies
}

func NewCreateOffer(deps Dependencies) *CreateOfferUseCase {
	return &CreateOfferUseCase{deps: deps}
}

// Execute registra um lance aberto. Só transações pending aceitam ofertas.
func (u *CreateOfferUseCase) Execute(ctx context.Context, input CreateOfferInput) (*domain.Offer, error) {
	offer := &domain.Offer{
		ID:            uuid.NewString(),
		TransactionID: input.TransactionID,
		UserID:        input.UserID,
		Amount:        input.Amount,
		ETAMinutes:    input.ETAMinutes,
		Notes:         input.Notes,
		Status:        domain.OfferOpen,
		CreatedAt:     u.deps.now().UTC(),
	}
	if err := offer.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := u.deps.withTimeout(ctx)
	defer cancel()

	err := u.deps.TxManager.Run(ctx, func(contextWithTx context.Context) error {
		transactionObject, err := requireTx(contextWithTx)
		if err != nil {
			return err
		}

		// Travamos a transação para que uma resolução concorrente não feche o leilão no meio.
		tx, err := u.deps.Transactions.WithTx(transactionObject).GetByIDForUpdate(contextWithTx, input.TransactionID)
		if err != nil {
			return fmt.Errorf("falha ao carregar transação %s: %w", input.TransactionID, err)
		}
		if tx.Status != domain.StatusPending {
			return &domain.NotFoundError{
				Entity: "transaction",
				ID:     tx.ID,
				Reason: "not accepting offers while " + string(tx.Status),
			}
		}

		if err := u.deps.Offers.WithTx(transactionObject).Create(contextWithTx, offer); err != nil {
			return fmt.Errorf("falha ao salvar oferta: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("create offer", err)
	}

	u.deps.Metrics.Offer(string(domain.OfferOpen))
	u.deps.publish(ctx, "offer.created", offerEvent(offer))
	return offer, nil
}
