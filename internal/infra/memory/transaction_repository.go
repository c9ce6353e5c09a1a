package memory

import (
	"context"
	"sort"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
)

type TransactionRepository struct {
	store *Store
	tx    *unit
}

func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.injected("transactions.create"); err != nil {
		return err
	}
	if _, exists := r.store.transactions[tx.ID]; exists {
		return &domain.ConflictError{Entity: "transaction", ID: tx.ID, Reason: "already exists"}
	}
	r.store.transactions[tx.ID] = *tx
	r.tx.onRollback(func() { delete(r.store.transactions, tx.ID) })
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.injected("transactions.get"); err != nil {
		return nil, err
	}
	tx, ok := r.store.transactions[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "transaction", ID: id}
	}
	return &tx, nil
}

// GetByIDForUpdate: o lock já é o txMu da Uow, então é uma leitura simples.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.injected("transactions.update_status"); err != nil {
		return err
	}
	tx, ok := r.store.transactions[id]
	if !ok {
		return &domain.NotFoundError{Entity: "transaction", ID: id}
	}
	if tx.Status != from {
		return &domain.ConflictError{Entity: "transaction", ID: id, Reason: "status is " + string(tx.Status)}
	}
	if err := tx.TransitionTo(to); err != nil {
		return err
	}
	r.store.transactions[id] = tx
	r.tx.onRollback(func() {
		if current, ok := r.store.transactions[id]; ok {
			current.Status = from
			r.store.transactions[id] = current
		}
	})
	return nil
}

func (r *TransactionRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.injected("transactions.list"); err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0)
	for _, tx := range r.store.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TransactionRepository) WithTx(tx gateway.TransactionObject) gateway.TransactionRepository {
	return &TransactionRepository{store: r.store, tx: r.store.bind(tx)}
}
