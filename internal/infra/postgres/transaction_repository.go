package postgres

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id::text, code, user_id, type, direction, chain, token, amount::text, currency, status,
	client_alias, client_kyc_url, client_notes, request_origin, sla_minutes, created_at, updated_at`

// TransactionRepository implementa gateway.TransactionRepository usando pgx/v5
type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions (id, code, user_id, type, direction, chain, token, amount, currency, status,
			client_alias, client_kyc_url, client_notes, request_origin, sla_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		tx.ID, tx.Code, tx.UserID, string(tx.Type), string(tx.Direction), tx.Chain, tx.Token,
		tx.Amount.Value.String(), tx.Amount.Currency, string(tx.Status),
		tx.Client.Alias, tx.Client.KYCURL, tx.Client.Notes, string(tx.RequestOrigin), tx.SLAMinutes,
		tx.CreatedAt, tx.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Entity: "transaction", ID: tx.ID, Reason: "already exists"}
	}
	return wrap("create transaction", err)
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.get(ctx, id, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1::uuid`)
}

// 🔐 Implementação do Lock
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.get(ctx, id, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1::uuid FOR UPDATE`)
}

func (r *TransactionRepository) get(ctx context.Context, id, query string) (*domain.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, &domain.NotFoundError{Entity: "transaction", ID: id}
		}
		return nil, wrap("get transaction", err)
	}
	return tx, nil
}

// UpdateStatus só altera se o status atual ainda for 'from' (compare-and-set no banco).
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	if !from.CanTransitionTo(to) {
		return &domain.ConflictError{Entity: "transaction", ID: id, Reason: "cannot move from " + string(from) + " to " + string(to)}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE transactions SET status = $1, updated_at = now() WHERE id = $2::uuid AND status = $3`,
		string(to), id, string(from))
	if isInvalidUUID(err) {
		return &domain.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return wrap("update transaction status", err)
	}
	// Se 0 linhas foram afetadas, outra operação mudou o status antes
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{Entity: "transaction", ID: id, Reason: "status is no longer " + string(from)}
	}
	return nil
}

func (r *TransactionRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, wrap("scan transaction", err)
		}
		out = append(out, *tx)
	}
	return out, wrap("list transactions", rows.Err())
}

// WithTx retorna uma cópia do repositório usando uma transação específica
func (r *TransactionRepository) WithTx(tx gateway.TransactionObject) gateway.TransactionRepository {
	return &TransactionRepository{db: txOrPool(r.db, tx)}
}

// Mapper: linha -> domínio
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx                                domain.Transaction
		txType, direction, status, origin string
		amount                            string
	)
	err := row.Scan(&tx.ID, &tx.Code, &tx.UserID, &txType, &direction, &tx.Chain, &tx.Token, &amount,
		&tx.Amount.Currency, &status, &tx.Client.Alias, &tx.Client.KYCURL, &tx.Client.Notes, &origin,
		&tx.SLAMinutes, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	tx.Amount.Value = value
	tx.Type = domain.TransactionType(txType)
	tx.Direction = domain.Direction(direction)
	tx.Status = domain.Status(status)
	tx.RequestOrigin = domain.RequestOrigin(origin)
	return &tx, nil
}
