package usecase

import (
	"context"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
)

type ResolveOfferInput struct {
	OfferID string
	UserID  string
	// Outcome: won fecha o leilão; lost recusa só esta oferta.
	Outcome domain.OfferStatus
}

type ResolveOfferOutput struct {
	Transaction *domain.Transaction
	Offers      []*domain.Offer
}

type ResolveOfferUseCase struct {
	deps Dependencies
}

func NewResolveOffer(deps Dependencies) *ResolveOfferUseCase {
	return &ResolveOfferUseCase{deps: deps}
}

// Execute resolve a oferta com lock pessimista na transação dona.
// Duas resoluções concorrentes na mesma transação: uma vence, a outra recebe ConflictError.
func (u *ResolveOfferUseCase) Execute(ctx context.Context, input ResolveOfferInput) (*ResolveOfferOutput, error) {
	if input.Outcome != domain.OfferWon && input.Outcome != domain.OfferLost {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{{Field: "outcome", Reason: "must be won or lost"}}}
	}

	ctx, cancel := u.deps.withTimeout(ctx)
	defer cancel()

	var (
		output  ResolveOfferOutput
		changed []*domain.Offer
		from    domain.Status
	)

	err := u.deps.TxManager.Run(ctx, func(contextWithTx context.Context) error {
		transactionObject, err := requireTx(contextWithTx)
		if err != nil {
			return err
		}
		transactionRepoTx := u.deps.Transactions.WithTx(transactionObject)
		offerRepoTx := u.deps.Offers.WithTx(transactionObject)

		offer, err := offerRepoTx.GetByID(contextWithTx, input.OfferID)
		if err != nil {
			return fmt.Errorf("falha ao carregar oferta %s: %w", input.OfferID, err)
		}

		// Lock na transação (SELECT ... FOR UPDATE). Serializa as resoluções.
		tx, err := transactionRepoTx.GetByIDForUpdate(contextWithTx, offer.TransactionID)
		if err != nil {
			return fmt.Errorf("falha ao travar transação %s: %w", offer.TransactionID, err)
		}
		// Só o dono da transação decide o leilão.
		if err := ownedBy(tx, input.UserID); err != nil {
			return err
		}
		if tx.Status != domain.StatusPending {
			return &domain.ConflictError{Entity: "transaction", ID: tx.ID, Reason: "already " + string(tx.Status)}
		}
		from = tx.Status

		// Relê as ofertas depois do lock: o estado lido antes pode estar velho.
		offers, err := offerRepoTx.ListByTransaction(contextWithTx, tx.ID)
		if err != nil {
			return fmt.Errorf("falha ao listar ofertas: %w", err)
		}

		if input.Outcome == domain.OfferWon {
			changed, err = domain.ResolveOffers(offers, input.OfferID)
			if err != nil {
				return err
			}
			if err := tx.TransitionTo(domain.StatusEscrow); err != nil {
				return err
			}
			if err := transactionRepoTx.UpdateStatus(contextWithTx, tx.ID, domain.StatusPending, domain.StatusEscrow); err != nil {
				return fmt.Errorf("falha ao mover transação para escrow: %w", err)
			}
		} else {
			target := findOffer(offers, input.OfferID)
			if target == nil {
				return &domain.NotFoundError{Entity: "offer", ID: input.OfferID}
			}
			if target.Resolved() {
				return &domain.ConflictError{Entity: "offer", ID: target.ID, Reason: "already " + string(target.Status)}
			}
			target.Status = domain.OfferLost
			changed = []*domain.Offer{target}
		}

		for _, o := range changed {
			if err := offerRepoTx.UpdateStatus(contextWithTx, o.ID, o.Status); err != nil {
				return fmt.Errorf("falha ao atualizar oferta %s: %w", o.ID, err)
			}
		}

		output.Transaction = tx
		output.Offers = offers
		return nil
	})
	if err != nil {
		return nil, storeErr("resolve offer", err)
	}

	for _, o := range changed {
		u.deps.Metrics.Offer(string(o.Status))
		u.deps.publish(ctx, "offer.resolved", offerEvent(o))
	}
	if output.Transaction.Status != from {
		u.deps.Metrics.Transition(string(from), string(output.Transaction.Status))
		u.deps.publish(ctx, "transaction."+string(output.Transaction.Status), transactionEvent(output.Transaction))
	}
	return &output, nil
}

func findOffer(offers []*domain.Offer, id string) *domain.Offer {
	for _, o := range offers {
		if o.ID == id {
			return o
		}
	}
	return nil
}
