package postgres

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Uow implementa gateway.TransactionManager
type Uow struct {
	pool *pgxpool.Pool
}

func NewUow(pool *pgxpool.Pool) *Uow {
	return &Uow{pool: pool}
}

// Run executa uma função dentro de uma transação ACID.
// Se a função retornar erro, faz Rollback. Se sucesso, Commit.
func (u *Uow) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel: pgx.ReadCommitted, // o FOR UPDATE na transação já serializa as resoluções
	})
	if err != nil {
		return &domain.TransportError{Op: "begin transaction", Err: err}
	}

	// Defer Rollback: Se commit não for chamado (pânico ou erro), garante rollback
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Injeta a transação
	ctxWithTx := context.WithValue(ctx, gateway.TransactionKey, tx)

	if err := fn(ctxWithTx); err != nil {
		return err // Rollback automático pelo defer
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.TransportError{Op: "commit transaction", Err: err}
	}
	return nil
}
