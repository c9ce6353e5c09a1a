package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, *memory.Store) {
	db := memory.NewStore()
	return NewStore(memory.NewNotificationRepository(db), nil, 0), db
}

func note(recipient, key string) domain.Notification {
	return domain.Notification{RecipientID: recipient, Message: "Transacción completada", DedupKey: key}
}

func TestAddStartsUnread(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	n, created, err := s.Add(ctx, note("alice", "tx-1:completed"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, n.Unread)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	count, err := s.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	a, _, err := s.Add(ctx, note("alice", "a"))
	require.NoError(t, err)
	_, _, err = s.Add(ctx, note("alice", "b"))
	require.NoError(t, err)

	require.NoError(t, s.MarkRead(ctx, a.ID))
	first, err := s.UnreadCount(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, s.MarkRead(ctx, a.ID))
	second, err := s.UnreadCount(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, first, second)
}

func TestMarkReadUnknownID(t *testing.T) {
	s, _ := newTestStore()
	err := s.MarkRead(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUnreadCountTracksInterleavedOperations(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	var ids []string
	for i, key := range []string{"k1", "k2", "k3", "k4", "k5"} {
		n, _, err := s.Add(ctx, note("alice", key))
		require.NoError(t, err)
		ids = append(ids, n.ID)
		if i%2 == 1 {
			require.NoError(t, s.MarkRead(ctx, ids[i-1]))
		}
	}
	_, _, err := s.Add(ctx, note("bob", "other"))
	require.NoError(t, err)

	list, err := s.List(ctx, "alice")
	require.NoError(t, err)
	unread := 0
	for _, n := range list {
		if n.Unread {
			unread++
		}
	}

	count, err := s.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, unread, count)
	assert.Equal(t, 3, count)
}

func TestDuplicateDeliveryDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	calls := 0
	s.Subscribe(func(Change) { calls++ })

	first, created, err := s.Add(ctx, note("alice", "tx-9:completed"))
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := s.Add(ctx, note("alice", "tx-9:completed"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	count, err := s.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, calls)
}

func TestAddSurfacesTransportError(t *testing.T) {
	s, db := newTestStore()
	db.FailOn("notifications.insert", context.DeadlineExceeded)

	_, _, err := s.Add(context.Background(), note("alice", "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	s, _ := newTestStore()

	var order []string
	s.Subscribe(func(Change) { order = append(order, "first") })
	s.Subscribe(func(Change) { order = append(order, "second") })
	s.Subscribe(func(Change) { order = append(order, "third") })

	_, _, err := s.Add(context.Background(), note("alice", "k"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	s, _ := newTestStore()

	var order []string
	var unsubThird func()
	unsubFirst := s.Subscribe(func(Change) {
		order = append(order, "first")
	})
	s.Subscribe(func(Change) {
		order = append(order, "second")
		// Remove o anterior (já avisado) e o próximo (ainda não avisado).
		unsubFirst()
		unsubThird()
	})
	unsubThird = s.Subscribe(func(Change) { order = append(order, "third") })

	s.Publish(Change{Kind: ChangeAdded})
	assert.Equal(t, []string{"first", "second"}, order)

	order = nil
	s.Publish(Change{Kind: ChangeAdded})
	assert.Equal(t, []string{"second"}, order)
}

func TestMarkReadNotifiesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	n, _, err := s.Add(ctx, note("alice", "k"))
	require.NoError(t, err)

	var kinds []ChangeKind
	s.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	require.NoError(t, s.MarkRead(ctx, n.ID))
	require.NoError(t, s.MarkRead(ctx, n.ID))
	assert.Equal(t, []ChangeKind{ChangeRead}, kinds)
}

func TestFirstUnreadReturnsOldest(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	none, err := s.FirstUnread(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, none)

	old, _, _ := s.Add(ctx, note("alice", "old"))
	_, _, _ = s.Add(ctx, note("alice", "new"))

	got, err := s.FirstUnread(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, old.ID, got.ID)
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "", Badge(0))
	assert.Equal(t, "1", Badge(1))
	assert.Equal(t, "99", Badge(99))
	assert.Equal(t, "99+", Badge(100))
	assert.Equal(t, "99+", Badge(5000))
}
