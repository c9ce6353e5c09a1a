// Package notification mantém as notificações por destinatário, o estado de
// leitura e a lista de observadores que recebem cada mudança.
package notification

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/metrics"
	"github.com/google/uuid"
)

// BadgeCap é o maior número exibido no badge. Acima disso mostramos "99+".
const BadgeCap = 99

type ChangeKind string

const (
	ChangeAdded ChangeKind = "added"
	ChangeRead  ChangeKind = "read"
)

type Change struct {
	Kind         ChangeKind          `json:"kind"`
	Notification domain.Notification `json:"notification"`
}

type Listener func(Change)

type subscription struct {
	fn      Listener
	removed atomic.Bool
}

// Store é o log de notificações com contagem de não lidas e observadores síncronos.
type Store struct {
	repo    gateway.NotificationRepository
	metrics *metrics.Recorder
	timeout time.Duration
	now     func() time.Time

	mu        sync.Mutex
	listeners []*subscription
}

func NewStore(repo gateway.NotificationRepository, rec *metrics.Recorder, timeout time.Duration) *Store {
	return &Store{
		repo:    repo,
		metrics: rec,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Prepare completa os campos gerados (id, unread, created_at) sem gravar nada.
func (s *Store) Prepare(n domain.Notification) domain.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Unread = true
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	return n
}

// Add grava a notificação como não lida. Uma reentrega com a mesma DedupKey
// devolve o registro original, não altera a contagem e não dispara observadores.
func (s *Store) Add(ctx context.Context, n domain.Notification) (domain.Notification, bool, error) {
	n = s.Prepare(n)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stored, created, err := s.repo.Insert(ctx, &n)
	if err != nil {
		return domain.Notification{}, false, fmt.Errorf("falha ao gravar notificação: %w", err)
	}
	s.metrics.Notification(!created)
	if created {
		s.Publish(Change{Kind: ChangeAdded, Notification: *stored})
	}
	return *stored, created, nil
}

// MarkRead é idempotente: marcar de novo uma notificação lida não faz nada.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	changed, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return fmt.Errorf("falha ao marcar notificação %s como lida: %w", id, err)
	}
	if !changed {
		return nil
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("falha ao recarregar notificação %s: %w", id, err)
	}
	s.Publish(Change{Kind: ChangeRead, Notification: *n})
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.Notification, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	return *n, nil
}

func (s *Store) List(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, err := s.repo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar notificações: %w", err)
	}
	return list, nil
}

// FirstUnread devolve a notificação não lida mais antiga, ou nil.
func (s *Store) FirstUnread(ctx context.Context, recipientID string) (*domain.Notification, error) {
	list, err := s.List(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Unread {
			n := list[i]
			return &n, nil
		}
	}
	return nil, nil
}

// UnreadCount é o valor exato. O limite de exibição fica em Badge.
func (s *Store) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("falha ao contar notificações não lidas: %w", err)
	}
	return count, nil
}

// Badge formata a contagem para o sino do dashboard.
func Badge(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > BadgeCap:
		return strconv.Itoa(BadgeCap) + "+"
	default:
		return strconv.Itoa(count)
	}
}

// Subscribe registra um observador. A função devolvida remove o registro.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, sub)
	s.mu.Unlock()

	return func() {
		sub.removed.Store(true)
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l == sub {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish entrega a mudança a todos os observadores, em ordem de registro.
// Itera sobre uma cópia estável: remoções durante o despacho não afetam quem já foi avisado.
func (s *Store) Publish(change Change) {
	s.mu.Lock()
	snapshot := make([]*subscription, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, sub := range snapshot {
		if sub.removed.Load() {
			continue
		}
		sub.fn(change)
	}
}
