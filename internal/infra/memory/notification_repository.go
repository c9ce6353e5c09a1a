package memory

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
)

type NotificationRepository struct {
	store *Store
	tx    *unit
}

func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) (*domain.Notification, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.injected("notifications.insert"); err != nil {
		return nil, false, err
	}
	if n.DedupKey != "" {
		if id, ok := r.store.dedup[n.DedupKey]; ok {
			existing := r.store.notifications[id]
			return &existing, false, nil
		}
		r.store.dedup[n.DedupKey] = n.ID
	}
	r.store.notifications[n.ID] = *n
	r.store.notifOrder = append(r.store.notifOrder, n.ID)
	id, dedupKey := n.ID, n.DedupKey
	r.tx.onRollback(func() {
		delete(r.store.notifications, id)
		if dedupKey != "" {
			delete(r.store.dedup, dedupKey)
		}
		r.store.notifOrder = removeID(r.store.notifOrder, id)
	})
	stored := *n
	return &stored, true, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.store.notifications[id]
	if !ok {
		return false, &domain.NotFoundError{Entity: "notification", ID: id}
	}
	if !n.Unread {
		return false, nil
	}
	n.Unread = false
	r.store.notifications[id] = n
	r.tx.onRollback(func() {
		if current, ok := r.store.notifications[id]; ok {
			current.Unread = true
			r.store.notifications[id] = current
		}
	})
	return true, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.store.notifications[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "notification", ID: id}
	}
	return &n, nil
}

// ListByRecipient devolve da mais nova para a mais antiga.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.Notification, 0)
	for i := len(r.store.notifOrder) - 1; i >= 0; i-- {
		n := r.store.notifications[r.store.notifOrder[i]]
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, n := range r.store.notifications {
		if n.RecipientID == recipientID && n.Unread {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) WithTx(tx gateway.TransactionObject) gateway.NotificationRepository {
	return &NotificationRepository{store: r.store, tx: r.store.bind(tx)}
}
