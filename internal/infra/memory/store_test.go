package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort")

func seedNotification(t *testing.T, repo *NotificationRepository, id, dedupKey string) {
	t.Helper()
	_, created, err := repo.Insert(context.Background(), &domain.Notification{
		ID:          id,
		RecipientID: "trader-1",
		Unread:      true,
		DedupKey:    dedupKey,
	})
	require.NoError(t, err)
	require.True(t, created)
}

func TestRollbackKeepsWritesMadeOutsideTheUnit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	notifications := NewNotificationRepository(store)
	seedNotification(t, notifications, "n1", "k1")

	err := NewUow(store).Run(ctx, func(ctx context.Context) error {
		changed, err := notifications.MarkRead(ctx, "n1")
		require.NoError(t, err)
		require.True(t, changed)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	count, err := notifications.CountUnread(ctx, "trader-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRollbackUndoesWritesMadeInsideTheUnit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	transactions := NewTransactionRepository(store)
	offers := NewOfferRepository(store)
	notifications := NewNotificationRepository(store)

	require.NoError(t, transactions.Create(ctx, &domain.Transaction{ID: "t1", UserID: "trader-1", Status: domain.StatusPending}))
	require.NoError(t, offers.Create(ctx, &domain.Offer{ID: "o1", TransactionID: "t1", Amount: decimal.NewFromInt(10), Status: domain.OfferOpen}))
	seedNotification(t, notifications, "n1", "k1")

	err := NewUow(store).Run(ctx, func(ctx context.Context) error {
		tx := gateway.TxFromContext(ctx)
		require.NoError(t, transactions.WithTx(tx).UpdateStatus(ctx, "t1", domain.StatusPending, domain.StatusEscrow))
		require.NoError(t, transactions.WithTx(tx).Create(ctx, &domain.Transaction{ID: "t2", UserID: "trader-1", Status: domain.StatusPending}))
		require.NoError(t, offers.WithTx(tx).UpdateStatus(ctx, "o1", domain.OfferWon))
		require.NoError(t, offers.WithTx(tx).Create(ctx, &domain.Offer{ID: "o2", TransactionID: "t1", Status: domain.OfferOpen}))
		_, err := notifications.WithTx(tx).MarkRead(ctx, "n1")
		require.NoError(t, err)
		_, _, err = notifications.WithTx(tx).Insert(ctx, &domain.Notification{ID: "n2", RecipientID: "trader-1", Unread: true, DedupKey: "k2"})
		require.NoError(t, err)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, err := transactions.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	_, err = transactions.GetByID(ctx, "t2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := offers.ListByTransaction(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.OfferOpen, list[0].Status)

	count, err := notifications.CountUnread(ctx, "trader-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, err = notifications.GetByID(ctx, "n2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A chave de dedup liberada aceita a notificação de novo.
	_, created, err := notifications.Insert(ctx, &domain.Notification{ID: "n2", RecipientID: "trader-1", Unread: true, DedupKey: "k2"})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	transactions := NewTransactionRepository(store)

	err := NewUow(store).Run(ctx, func(ctx context.Context) error {
		return transactions.WithTx(gateway.TxFromContext(ctx)).Create(ctx, &domain.Transaction{ID: "t1", UserID: "trader-1", Status: domain.StatusPending})
	})
	require.NoError(t, err)

	_, err = transactions.GetByID(ctx, "t1")
	assert.NoError(t, err)
}

func TestRunRejectsExpiredContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewUow(NewStore()).Run(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.False(t, called)
}
