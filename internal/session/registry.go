package session

import "sync"

// Registry acompanha as sessões abertas por usuário para que um sign-out
// alcance todas as conexões dele (ex: o stream de notificações).
type Registry struct {
	mu     sync.Mutex
	byUser map[string]map[*Session]struct{}
}

func NewRegistry() *Registry {
	return &Registry{byUser: map[string]map[*Session]struct{}{}}
}

// Open cria e registra uma sessão. Quem abre deve chamar Release ao terminar.
func (r *Registry) Open(userID string) *Session {
	s := New(userID)
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byUser[userID]
	if !ok {
		set = map[*Session]struct{}{}
		r.byUser[userID] = set
	}
	set[s] = struct{}{}
	return s
}

// Release esquece a sessão sem encerrá-la.
func (r *Registry) Release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.byUser[s.UserID]
	delete(set, s)
	if len(set) == 0 {
		delete(r.byUser, s.UserID)
	}
}

// SignOut encerra todas as sessões abertas do usuário e devolve quantas eram.
func (r *Registry) SignOut(userID string) int {
	r.mu.Lock()
	set := r.byUser[userID]
	delete(r.byUser, userID)
	r.mu.Unlock()

	for s := range set {
		s.SignOut()
	}
	return len(set)
}

// Active conta as sessões abertas do usuário.
func (r *Registry) Active(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser[userID])
}
