package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/notification"
)

// FinishOutput é o resultado de liquidar ou cancelar uma transação.
type FinishOutput struct {
	Transaction  *domain.Transaction
	Notification *domain.Notification
}

// finish aplica from -> to na transação de userID, derruba ofertas abertas e grava a notificação do dono,
// tudo dentro da mesma unidade de trabalho. Ou tudo muda, ou nada muda.
func (d Dependencies) finish(ctx context.Context, userID, transactionID string, from, to domain.Status) (*FinishOutput, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	var (
		output  FinishOutput
		created bool
		dropped []*domain.Offer
	)

	err := d.TxManager.Run(ctx, func(contextWithTx context.Context) error {
		transactionObject, err := requireTx(contextWithTx)
		if err != nil {
			return err
		}
		transactionRepoTx := d.Transactions.WithTx(transactionObject)

		tx, err := transactionRepoTx.GetByIDForUpdate(contextWithTx, transactionID)
		if err != nil {
			return fmt.Errorf("falha ao travar transação %s: %w", transactionID, err)
		}
		if err := ownedBy(tx, userID); err != nil {
			return err
		}
		if tx.Status != from {
			return &domain.ConflictError{
				Entity: "transaction",
				ID:     tx.ID,
				Reason: "expected " + string(from) + " but is " + string(tx.Status),
			}
		}
		if err := tx.TransitionTo(to); err != nil {
			return err
		}
		if err := transactionRepoTx.UpdateStatus(contextWithTx, tx.ID, from, to); err != nil {
			return fmt.Errorf("falha ao atualizar status: %w", err)
		}

		// Cancelar uma transação pending encerra o leilão.
		if from == domain.StatusPending {
			offerRepoTx := d.Offers.WithTx(transactionObject)
			offers, err := offerRepoTx.ListByTransaction(contextWithTx, tx.ID)
			if err != nil {
				return fmt.Errorf("falha ao listar ofertas: %w", err)
			}
			for _, o := range offers {
				if o.Resolved() {
					continue
				}
				o.Status = domain.OfferLost
				if err := offerRepoTx.UpdateStatus(contextWithTx, o.ID, o.Status); err != nil {
					return fmt.Errorf("falha ao atualizar oferta %s: %w", o.ID, err)
				}
				dropped = append(dropped, o)
			}
		}

		n := d.buildNotification(tx)
		stored, isNew, err := d.Notifications.WithTx(transactionObject).Insert(contextWithTx, &n)
		if err != nil {
			return fmt.Errorf("falha ao gravar notificação: %w", err)
		}
		created = isNew
		output.Transaction = tx
		output.Notification = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.Metrics.Transition(string(from), string(to))
	d.Metrics.Notification(!created)
	if created && d.NotificationStore != nil {
		d.NotificationStore.Publish(notification.Change{Kind: notification.ChangeAdded, Notification: *output.Notification})
	}
	for _, o := range dropped {
		d.Metrics.Offer(string(o.Status))
		d.publish(ctx, "offer.resolved", offerEvent(o))
	}
	d.publish(ctx, "transaction."+string(to), transactionEvent(output.Transaction))
	return &output, nil
}

func (d Dependencies) buildNotification(tx *domain.Transaction) domain.Notification {
	n := domain.Notification{
		RecipientID: tx.UserID,
		Message:     notificationMessage(tx),
		Payload: domain.NotificationPayload{
			TransactionID: tx.ID,
			Amount:        tx.Amount,
			Customer:      tx.Client.Alias,
			Link:          d.deepLink(tx.ID),
		},
		DedupKey: domain.NotificationDedupKey(tx.ID, tx.Status),
	}
	if d.NotificationStore != nil {
		return d.NotificationStore.Prepare(n)
	}
	n.ID = eventID("notification", n.DedupKey)
	n.Unread = true
	n.CreatedAt = d.now().UTC()
	return n
}

func (d Dependencies) deepLink(transactionID string) string {
	if d.DeepLinkBase == "" {
		return ""
	}
	return strings.TrimSuffix(d.DeepLinkBase, "/") + "/transactions/" + transactionID
}

func notificationMessage(tx *domain.Transaction) string {
	switch tx.Status {
	case domain.StatusCompleted:
		return fmt.Sprintf("Transacción %s completada", tx.Code)
	case domain.StatusFailed:
		return fmt.Sprintf("Transacción %s fallida", tx.Code)
	}
	return fmt.Sprintf("Transacción %s actualizada a %s", tx.Code, tx.Status)
}
