package usecase

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
)

type SettleTransactionInput struct {
	TransactionID string
	UserID        string
	Outcome       domain.Status // completed | failed
}

type SettleTransactionUseCase struct {
	deps Dependencies
}

func NewSettleTransaction(deps Dependencies) *SettleTransactionUseCase {
	return &SettleTransactionUseCase{deps: deps}
}

// Execute liquida uma transação em escrow e avisa o dono com exatamente uma notificação.
func (u *SettleTransactionUseCase) Execute(ctx context.Context, input SettleTransactionInput) (*FinishOutput, error) {
	if input.Outcome != domain.StatusCompleted && input.Outcome != domain.StatusFailed {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{{Field: "outcome", Reason: "must be completed or failed"}}}
	}
	output, err := u.deps.finish(ctx, input.UserID, input.TransactionID, domain.StatusEscrow, input.Outcome)
	if err != nil {
		return nil, storeErr("settle transaction", err)
	}
	return output, nil
}
