package usecase

import (
	"context"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
)

type GetTransactionInput struct {
	TransactionID string
	UserID        string
}

type GetTransactionUseCase struct {
	deps Dependencies
}

func NewGetTransaction(deps Dependencies) *GetTransactionUseCase {
	return &GetTransactionUseCase{deps: deps}
}

func (u *GetTransactionUseCase) Execute(ctx context.Context, input GetTransactionInput) (*domain.Transaction, error) {
	ctx, cancel := u.deps.withTimeout(ctx)
	defer cancel()

	tx, err := u.deps.Transactions.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, storeErr("get transaction", err)
	}
	if err := ownedBy(tx, input.UserID); err != nil {
		return nil, err
	}
	return tx, nil
}

type ListTransactionsInput struct {
	UserID string
	Filter domain.FilterValue
}

type ListTransactionsUseCase struct {
	deps Dependencies
}

func NewListTransactions(deps Dependencies) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{deps: deps}
}

// Execute lista as transações do dono e aplica o filtro do dashboard.
func (u *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) ([]domain.Transaction, error) {
	ctx, cancel := u.deps.withTimeout(ctx)
	defer cancel()

	all, err := u.deps.Transactions.ListByOwner(ctx, input.UserID)
	if err != nil {
		return nil, storeErr("list transactions", fmt.Errorf("erro ao listar transações: %w", err))
	}
	return domain.Apply(input.Filter.Normalize(), all, u.deps.now()), nil
}

type ListOffersUseCase struct {
	deps Dependencies
}

func NewListOffers(deps Dependencies) *ListOffersUseCase {
	return &ListOffersUseCase{deps: deps}
}

func (u *ListOffersUseCase) Execute(ctx context.Context, transactionID string) ([]*domain.Offer, error) {
	ctx, cancel := u.deps.withTimeout(ctx)
	defer cancel()

	if _, err := u.deps.Transactions.GetByID(ctx, transactionID); err != nil {
		return nil, storeErr("list offers", err)
	}
	offers, err := u.deps.Offers.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, storeErr("list offers", fmt.Errorf("erro ao listar ofertas: %w", err))
	}
	return offers, nil
}
