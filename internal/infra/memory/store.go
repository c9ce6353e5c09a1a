// Package memory implementa os repositórios em memória. Serve de dublê nos testes
// e de backend quando a API sobe sem Postgres.
package memory

import (
	"context"
	"sync"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
)

// Store guarda todas as tabelas. Os repositórios são visões sobre ele.
type Store struct {
	mu   sync.Mutex // protege os mapas
	txMu sync.Mutex // serializa as unidades de trabalho (equivalente ao lock de linha)

	transactions  map[string]domain.Transaction
	offers        map[string]domain.Offer
	offerOrder    []string
	notifications map[string]domain.Notification
	notifOrder    []string
	dedup         map[string]string

	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		transactions:  map[string]domain.Transaction{},
		offers:        map[string]domain.Offer{},
		notifications: map[string]domain.Notification{},
		dedup:         map[string]string{},
		failures:      map[string]error{},
	}
}

// FailOn faz a próxima chamada de op falhar com err. Usado para simular queda do banco.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// injected consome a falha programada. Deve ser chamado com s.mu travado.
func (s *Store) injected(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return &domain.TransportError{Op: op, Err: err}
}

// unit é a unidade de trabalho em andamento. Só as escritas feitas pelos repositórios
// ligados a ela (WithTx) entram no log de desfazer. Escritas de fora sobrevivem ao rollback.
type unit struct {
	store *Store
	undo  []func()
}

// onRollback registra como desfazer uma escrita. Deve ser chamado com s.mu travado.
// Receiver nil = repositório fora da unidade, nada a registrar.
func (u *unit) onRollback(fn func()) {
	if u == nil {
		return
	}
	u.undo = append(u.undo, fn)
}

func (u *unit) rollback() {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
}

// bind devolve a unidade se tx pertence a este store.
func (s *Store) bind(tx gateway.TransactionObject) *unit {
	if u, ok := tx.(*unit); ok && u.store == s {
		return u
	}
	return nil
}

func removeID(ids []string, id string) []string {
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Uow implementa gateway.TransactionManager com log de desfazer.
type Uow struct {
	store *Store
}

func NewUow(store *Store) *Uow {
	return &Uow{store: store}
}

func (u *Uow) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return &domain.TransportError{Op: "begin", Err: err}
	}

	work := &unit{store: u.store}
	ctxWithTx := context.WithValue(ctx, gateway.TransactionKey, work)
	if err := fn(ctxWithTx); err != nil {
		work.rollback()
		return err
	}
	return nil
}
