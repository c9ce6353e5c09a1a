package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransactionInput define os dados necessários para abrir uma operação OTC.
// Usamos DTOs para não acoplar a API HTTP ao UseCase.
type CreateTransactionInput struct {
	UserID        string
	Type          domain.TransactionType
	Direction     domain.Direction
	Chain         string
	Token         string
	Amount        decimal.Decimal
	Currency      string
	Client        domain.Client
	RequestOrigin domain.RequestOrigin
	SLAMinutes    int
}

type CreateTransactionUseCase struct {
	deps Dependencies
}

func NewCreateTransaction(deps Dependencies) *CreateTransactionUseCase {
	return &CreateTransactionUseCase{deps: deps}
}

// Execute valida, gera o código e grava a transação como pending.
func (u *CreateTransactionUseCase) Execute(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	id := uuid.NewString()
	now := u.deps.now().UTC()

	tx := &domain.Transaction{
		ID:            id,
		Code:          transactionCode(id),
		UserID:        input.UserID,
		Type:          input.Type,
		Direction:     input.Direction,
		Chain:         strings.ToUpper(strings.TrimSpace(input.Chain)),
		Token:         strings.ToUpper(strings.TrimSpace(input.Token)),
		Amount:        domain.Money{Value: input.Amount, Currency: strings.ToUpper(strings.TrimSpace(input.Currency))},
		Status:        domain.StatusPending,
		Client:        input.Client,
		RequestOrigin: input.RequestOrigin,
		SLAMinutes:    input.SLAMinutes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if tx.Direction == "" {
		tx.Direction = defaultDirection(tx.Type)
	}
	if tx.RequestOrigin == "" {
		tx.RequestOrigin = domain.OriginManual
	}

	var verr *domain.ValidationError
	if err := tx.Validate(); err != nil && !errors.As(err, &verr) {
		return nil, err
	}
	if verr == nil {
		verr = &domain.ValidationError{}
	}
	if strings.TrimSpace(input.UserID) == "" {
		verr.Add("user_id", "required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	ctx, cancel := u.deps.withTimeout(ctx)
	defer cancel()

	err := u.deps.TxManager.Run(ctx, func(contextWithTx context.Context) error {
		transactionObject, err := requireTx(contextWithTx)
		if err != nil {
			return err
		}
		if err := u.deps.Transactions.WithTx(transactionObject).Create(contextWithTx, tx); err != nil {
			return fmt.Errorf("falha ao salvar transação: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("create transaction", err)
	}

	u.deps.publish(ctx, "transaction.created", transactionEvent(tx))
	return tx, nil
}

// transactionCode gera o código curto exibido no dashboard (ex: OTC-1A2B3C4D).
func transactionCode(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "OTC-" + strings.ToUpper(compact)
}

// Cliente comprando cripto paga em fiat; vendendo, recebe fiat.
func defaultDirection(t domain.TransactionType) domain.Direction {
	switch t {
	case domain.TransactionBuy:
		return domain.DirectionFiatToCrypto
	case domain.TransactionSell:
		return domain.DirectionCryptoToFiat
	}
	return ""
}
