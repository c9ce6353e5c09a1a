package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/memory"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/notification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []interface{}
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, body)
	return p.err
}

const owner = "trader-1"

type fixture struct {
	db        *memory.Store
	deps      Dependencies
	store     *notification.Store
	publisher *recordingPublisher
	ctx       context.Context
}

func newFixture() *fixture {
	db := memory.NewStore()
	notifRepo := memory.NewNotificationRepository(db)
	store := notification.NewStore(notifRepo, nil, time.Second)
	publisher := &recordingPublisher{}
	return &fixture{
		db:        db,
		store:     store,
		publisher: publisher,
		ctx:       context.Background(),
		deps: Dependencies{
			Transactions:      memory.NewTransactionRepository(db),
			Offers:            memory.NewOfferRepository(db),
			Notifications:     notifRepo,
			TxManager:         memory.NewUow(db),
			Publisher:         publisher,
			NotificationStore: store,
			StoreTimeout:      time.Second,
			DeepLinkBase:      "https://desk.example.com/",
		},
	}
}

func (f *fixture) createTransaction(t *testing.T) *domain.Transaction {
	t.Helper()
	tx, err := NewCreateTransaction(f.deps).Execute(f.ctx, CreateTransactionInput{
		UserID:   owner,
		Type:     domain.TransactionBuy,
		Chain:    "ETH",
		Token:    "USDT",
		Amount:   decimal.NewFromInt(1000),
		Currency: "USD",
		Client:   domain.Client{Alias: "ACME Corp"},
	})
	require.NoError(t, err)
	return tx
}

func (f *fixture) createOffer(t *testing.T, txID string, amount int64) *domain.Offer {
	t.Helper()
	offer, err := NewCreateOffer(f.deps).Execute(f.ctx, CreateOfferInput{
		TransactionID: txID,
		UserID:        "desk-2",
		Amount:        decimal.NewFromInt(amount),
		ETAMinutes:    15,
	})
	require.NoError(t, err)
	return offer
}

func (f *fixture) offerStatuses(t *testing.T, txID string) map[string]domain.OfferStatus {
	t.Helper()
	offers, err := NewListOffers(f.deps).Execute(f.ctx, txID)
	require.NoError(t, err)
	out := map[string]domain.OfferStatus{}
	for _, o := range offers {
		out[o.ID] = o.Status
	}
	return out
}

func TestFullLifecycleScenario(t *testing.T) {
	f := newFixture()

	var received []notification.Change
	f.store.Subscribe(func(c notification.Change) { received = append(received, c) })

	tx := f.createTransaction(t)
	assert.Equal(t, domain.StatusPending, tx.Status)
	assert.Regexp(t, `^OTC-[0-9A-F]{8}$`, tx.Code)
	assert.Equal(t, domain.DirectionFiatToCrypto, tx.Direction)

	high := f.createOffer(t, tx.ID, 1000)
	low := f.createOffer(t, tx.ID, 950)

	resolved, err := NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: low.ID, Outcome: domain.OfferWon})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEscrow, resolved.Transaction.Status)

	statuses := f.offerStatuses(t, tx.ID)
	assert.Equal(t, domain.OfferWon, statuses[low.ID])
	assert.Equal(t, domain.OfferLost, statuses[high.ID])

	settled, err := NewSettleTransaction(f.deps).Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, settled.Transaction.Status)

	require.Len(t, received, 1)
	payload := received[0].Notification.Payload
	assert.Equal(t, "trader-1", received[0].Notification.RecipientID)
	assert.Equal(t, tx.ID, payload.TransactionID)
	assert.True(t, decimal.NewFromInt(1000).Equal(payload.Amount.Value))
	assert.Equal(t, "USD", payload.Amount.Currency)
	assert.Equal(t, "ACME Corp", payload.Customer)
	assert.Equal(t, "https://desk.example.com/transactions/"+tx.ID, payload.Link)

	count, err := f.store.UnreadCount(f.ctx, "trader-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	assert.Equal(t, []string{
		"transaction.created",
		"offer.created",
		"offer.created",
		"offer.resolved",
		"offer.resolved",
		"transaction.escrow",
		"transaction.completed",
	}, f.publisher.keys)
}

func TestResolveOfferOnEscrowConflictsWithoutMutation(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)
	a := f.createOffer(t, tx.ID, 1000)
	b := f.createOffer(t, tx.ID, 990)

	_, err := NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: a.ID, Outcome: domain.OfferWon})
	require.NoError(t, err)
	before := f.offerStatuses(t, tx.ID)

	_, err = NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: b.ID, Outcome: domain.OfferWon})
	require.Error(t, err)
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict))

	assert.Equal(t, before, f.offerStatuses(t, tx.ID))
	got, err := NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEscrow, got.Status)
}

func TestConcurrentResolutionsProduceOneWinner(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)

	const n = 8
	offers := make([]*domain.Offer, n)
	for i := range offers {
		offers[i] = f.createOffer(t, tx.ID, int64(900+i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for _, o := range offers {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: id, Outcome: domain.OfferWon})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(o.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)

	won, lost := 0, 0
	for _, s := range f.offerStatuses(t, tx.ID) {
		switch s {
		case domain.OfferWon:
			won++
		case domain.OfferLost:
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, lost)
}

func TestDeclineSingleOffer(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)
	a := f.createOffer(t, tx.ID, 1000)
	b := f.createOffer(t, tx.ID, 990)

	out, err := NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: a.ID, Outcome: domain.OfferLost})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, out.Transaction.Status)

	statuses := f.offerStatuses(t, tx.ID)
	assert.Equal(t, domain.OfferLost, statuses[a.ID])
	assert.Equal(t, domain.OfferOpen, statuses[b.ID])

	_, err = NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: a.ID, Outcome: domain.OfferWon})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestResolveOfferValidation(t *testing.T) {
	f := newFixture()
	_, err := NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: "x", Outcome: "maybe"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: "missing", Outcome: domain.OfferWon})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture()
	_, err := NewCreateTransaction(f.deps).Execute(f.ctx, CreateTransactionInput{Type: "swap"})
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	var fields []string
	for _, fe := range verr.Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"type", "chain", "token", "amount.value", "amount.currency", "user_id"}, fields)

	list, err := NewListTransactions(f.deps).Execute(f.ctx, ListTransactionsInput{UserID: "trader-1", Filter: domain.DefaultFilter()})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.publisher.keys)
}

func TestCreateOfferRequiresPendingTransaction(t *testing.T) {
	f := newFixture()

	_, err := NewCreateOffer(f.deps).Execute(f.ctx, CreateOfferInput{TransactionID: "nope", Amount: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	tx := f.createTransaction(t)
	_, err = NewCancelTransaction(f.deps).Execute(f.ctx, CancelTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)

	_, err = NewCreateOffer(f.deps).Execute(f.ctx, CreateOfferInput{TransactionID: tx.ID, Amount: decimal.NewFromInt(1)})
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Reason, "failed")

	_, err = NewCreateOffer(f.deps).Execute(f.ctx, CreateOfferInput{TransactionID: tx.ID, Amount: decimal.Zero})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSettleRequiresEscrow(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)

	_, err := NewSettleTransaction(f.deps).Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusCompleted})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = NewSettleTransaction(f.deps).Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusEscrow})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	count, err := f.store.UnreadCount(f.ctx, "trader-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSettleTwiceEmitsOneNotification(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)
	o := f.createOffer(t, tx.ID, 1000)
	_, err := NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: o.ID, Outcome: domain.OfferWon})
	require.NoError(t, err)

	settle := NewSettleTransaction(f.deps)
	_, err = settle.Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusFailed})
	require.NoError(t, err)
	_, err = settle.Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusCompleted})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	list, err := f.store.List(f.ctx, "trader-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "fallida")

	got, err := NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
}

func TestSettleIsAllOrNothing(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)
	o := f.createOffer(t, tx.ID, 1000)
	_, err := NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: o.ID, Outcome: domain.OfferWon})
	require.NoError(t, err)

	f.db.FailOn("notifications.insert", errors.New("connection reset"))
	_, err = NewSettleTransaction(f.deps).Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusCompleted})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))

	got, err := NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEscrow, got.Status)

	count, err := f.store.UnreadCount(f.ctx, "trader-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Retry depois da falha transitória funciona.
	_, err = NewSettleTransaction(f.deps).Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusCompleted})
	require.NoError(t, err)
}

func TestCancelDropsOpenOffers(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)
	a := f.createOffer(t, tx.ID, 1000)
	b := f.createOffer(t, tx.ID, 1010)

	out, err := NewCancelTransaction(f.deps).Execute(f.ctx, CancelTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, out.Transaction.Status)
	require.NotNil(t, out.Notification)
	assert.Equal(t, domain.NotificationDedupKey(tx.ID, domain.StatusFailed), out.Notification.DedupKey)

	statuses := f.offerStatuses(t, tx.ID)
	assert.Equal(t, domain.OfferLost, statuses[a.ID])
	assert.Equal(t, domain.OfferLost, statuses[b.ID])

	_, err = NewCancelTransaction(f.deps).Execute(f.ctx, CancelTransactionInput{TransactionID: tx.ID, UserID: owner})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestPublisherFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	tx := f.createTransaction(t)
	assert.Equal(t, domain.StatusPending, tx.Status)
}

func TestStatusSequenceNeverRegresses(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)
	o := f.createOffer(t, tx.ID, 1000)

	seen := []domain.Status{tx.Status}
	record := func() {
		got, err := NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: owner})
		require.NoError(t, err)
		seen = append(seen, got.Status)
	}

	_, _ = NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: o.ID, Outcome: domain.OfferWon})
	record()
	_, _ = NewCancelTransaction(f.deps).Execute(f.ctx, CancelTransactionInput{TransactionID: tx.ID, UserID: owner}) // conflito: já em escrow
	record()
	_, _ = NewSettleTransaction(f.deps).Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusCompleted})
	record()
	_, _ = NewSettleTransaction(f.deps).Execute(f.ctx, SettleTransactionInput{UserID: owner, TransactionID: tx.ID, Outcome: domain.StatusFailed})
	record()

	assert.Equal(t, []domain.Status{
		domain.StatusPending,
		domain.StatusEscrow,
		domain.StatusEscrow,
		domain.StatusCompleted,
		domain.StatusCompleted,
	}, seen)
}

func TestListTransactionsAppliesFilter(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

	f.deps.Now = func() time.Time { return now.AddDate(0, 0, -8) }
	old := f.createTransaction(t)
	f.deps.Now = func() time.Time { return now.AddDate(0, 0, -2) }
	recent := f.createTransaction(t)
	f.deps.Now = func() time.Time { return now }

	list, err := NewListTransactions(f.deps).Execute(f.ctx, ListTransactionsInput{
		UserID: "trader-1",
		Filter: domain.FilterValue{Type: domain.TypeAll, DatePreset: domain.PresetThisWeek},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, recent.ID, list[0].ID)
	assert.NotEqual(t, old.ID, list[0].ID)

	list, err = NewListTransactions(f.deps).Execute(f.ctx, ListTransactionsInput{
		UserID: "trader-1",
		Filter: domain.FilterValue{Type: domain.TypeCryptoToFiat, DatePreset: domain.PresetThisMonth},
	})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestForeignUserCannotTouchTransaction(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)
	o := f.createOffer(t, tx.ID, 1000)
	const stranger = "trader-2"

	_, err := NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: stranger})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: stranger, OfferID: o.ID, Outcome: domain.OfferWon})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = NewCancelTransaction(f.deps).Execute(f.ctx, CancelTransactionInput{TransactionID: tx.ID, UserID: stranger})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, err := NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.OfferOpen, f.offerStatuses(t, tx.ID)[o.ID])

	_, err = NewResolveOffer(f.deps).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: o.ID, Outcome: domain.OfferWon})
	require.NoError(t, err)
	_, err = NewSettleTransaction(f.deps).Execute(f.ctx, SettleTransactionInput{UserID: stranger, TransactionID: tx.ID, Outcome: domain.StatusCompleted})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, err = NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEscrow, got.Status)

	count, err := f.store.UnreadCount(f.ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// stalledTransactions segura o lock da transação até o contexto expirar, como um banco travado.
type stalledTransactions struct {
	gateway.TransactionRepository
}

func (r stalledTransactions) GetByIDForUpdate(ctx context.Context, id string) (*domain.Transaction, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (r stalledTransactions) WithTx(tx gateway.TransactionObject) gateway.TransactionRepository {
	return stalledTransactions{TransactionRepository: r.TransactionRepository.WithTx(tx)}
}

func TestStoreDeadlineBecomesTransportError(t *testing.T) {
	f := newFixture()
	tx := f.createTransaction(t)
	o := f.createOffer(t, tx.ID, 1000)
	keys := len(f.publisher.keys)

	stalled := f.deps
	stalled.Transactions = stalledTransactions{TransactionRepository: f.deps.Transactions}
	stalled.StoreTimeout = 20 * time.Millisecond

	_, err := NewResolveOffer(stalled).Execute(f.ctx, ResolveOfferInput{UserID: owner, OfferID: o.ID, Outcome: domain.OfferWon})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	_, err = NewCancelTransaction(stalled).Execute(f.ctx, CancelTransactionInput{TransactionID: tx.ID, UserID: owner})
	assert.True(t, errors.Is(err, domain.ErrTransport))

	got, err := NewGetTransaction(f.deps).Execute(f.ctx, GetTransactionInput{TransactionID: tx.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.OfferOpen, f.offerStatuses(t, tx.ID)[o.ID])

	count, err := f.store.UnreadCount(f.ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, f.publisher.keys, keys)
}
