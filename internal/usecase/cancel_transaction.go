package usecase

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
)

type CancelTransactionInput struct {
	TransactionID string
	UserID        string
}

type CancelTransactionUseCase struct {
	deps Dependencies
}

func NewCancelTransaction(deps Dependencies) *CancelTransactionUseCase {
	return &CancelTransactionUseCase{deps: deps}
}

// Execute leva uma transação pending direto para failed, derrubando as ofertas abertas.
func (u *CancelTransactionUseCase) Execute(ctx context.Context, input CancelTransactionInput) (*FinishOutput, error) {
	output, err := u.deps.finish(ctx, input.UserID, input.TransactionID, domain.StatusPending, domain.StatusFailed)
	if err != nil {
		return nil, storeErr("cancel transaction", err)
	}
	return output, nil
}
