package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
)

type NotificationRepository interface {
	// Insert grava a notificação. Se já existir uma com a mesma DedupKey,
	// devolve a existente e created=false.
	Insert(ctx context.Context, n *domain.Notification) (stored *domain.Notification, created bool, err error)

	// MarkRead devolve changed=false quando já estava lida.
	MarkRead(ctx context.Context, id string) (changed bool, err error)

	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)

	WithTx(tx TransactionObject) NotificationRepository
}
