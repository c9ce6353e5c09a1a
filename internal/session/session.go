// Package session substitui o gerenciador global de autenticação por um objeto
// explícito que viaja no context da request.
package session

import (
	"context"
	"sync"
)

type Event string

const (
	EventSignedOut Event = "signed_out"
)

type Listener func(Event)

// Session pertence a quem a criou. Não existe estado global.
type Session struct {
	UserID string

	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	order     []int
	closed    bool
}

func New(userID string) *Session {
	return &Session{UserID: userID, listeners: map[int]Listener{}}
}

// Subscribe registra um observador da sessão. Se a sessão já terminou, o
// observador é chamado na hora com EventSignedOut.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn(EventSignedOut)
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SignOut encerra a sessão e avisa os observadores uma única vez.
func (s *Session) SignOut() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		if fn, ok := s.listeners[id]; ok {
			pending = append(pending, fn)
		}
	}
	s.listeners = map[int]Listener{}
	s.order = nil
	s.mu.Unlock()

	for _, fn := range pending {
		fn(EventSignedOut)
	}
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
