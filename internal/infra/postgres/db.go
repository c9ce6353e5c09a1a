package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// DBTX é o que pgxpool.Pool e pgx.Tx têm em comum.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Migrate cria as tabelas se ainda não existirem.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// txOrPool usa a transação do contexto se existir.
func txOrPool(pool DBTX, tx gateway.TransactionObject) DBTX {
	if pgTx, ok := tx.(pgx.Tx); ok {
		return pgTx
	}
	return pool
}

const (
	uniqueViolation = "23505"
	// invalidText: o id recebido não é um UUID válido.
	invalidText = "22P02"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidText
}

// isMissing: nenhuma linha, ou um id que nem é UUID e portanto não pode existir.
func isMissing(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err)
}

// wrap converte erros do driver em TransportError. Erros de domínio passam direto.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Erro do servidor com resposta: não é problema de transporte.
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return &domain.TransportError{Op: op, Err: err}
}
