package memory

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
)

type OfferRepository struct {
	store *Store
	tx    *unit
}

func NewOfferRepository(store *Store) *OfferRepository {
	return &OfferRepository{store: store}
}

func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.injected("offers.create"); err != nil {
		return err
	}
	r.store.offers[offer.ID] = *offer
	r.store.offerOrder = append(r.store.offerOrder, offer.ID)
	id := offer.ID
	r.tx.onRollback(func() {
		delete(r.store.offers, id)
		r.store.offerOrder = removeID(r.store.offerOrder, id)
	})
	return nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	offer, ok := r.store.offers[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "offer", ID: id}
	}
	return &offer, nil
}

func (r *OfferRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.Offer, 0)
	for _, id := range r.store.offerOrder {
		offer := r.store.offers[id]
		if offer.TransactionID == transactionID {
			out = append(out, &offer)
		}
	}
	return out, nil
}

func (r *OfferRepository) UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.injected("offers.update_status"); err != nil {
		return err
	}
	offer, ok := r.store.offers[id]
	if !ok {
		return &domain.NotFoundError{Entity: "offer", ID: id}
	}
	if offer.Resolved() {
		return &domain.ConflictError{Entity: "offer", ID: id, Reason: "already " + string(offer.Status)}
	}
	previous := offer.Status
	offer.Status = status
	r.store.offers[id] = offer
	r.tx.onRollback(func() {
		if current, ok := r.store.offers[id]; ok {
			current.Status = previous
			r.store.offers[id] = current
		}
	})
	return nil
}

func (r *OfferRepository) WithTx(tx gateway.TransactionObject) gateway.OfferRepository {
	return &OfferRepository{store: r.store, tx: r.store.bind(tx)}
}
