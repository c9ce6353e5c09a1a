package postgres

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const offerColumns = `id::text, transaction_id::text, user_id, amount::text, eta_minutes, notes, status, created_at`

type OfferRepository struct {
	db DBTX
}

func NewOfferRepository(db DBTX) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO offers (id, transaction_id, user_id, amount, eta_minutes, notes, status, created_at)
		VALUES ($1, $2::uuid, $3, $4::numeric, $5, $6, $7, $8)`,
		offer.ID, offer.TransactionID, offer.UserID, offer.Amount.String(), offer.ETAMinutes,
		offer.Notes, string(offer.Status), offer.CreatedAt,
	)
	return wrap("create offer", err)
}

func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	offer, err := scanOffer(r.db.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1::uuid`, id))
	if err != nil {
		if isMissing(err) {
			return nil, &domain.NotFoundError{Entity: "offer", ID: id}
		}
		return nil, wrap("get offer", err)
	}
	return offer, nil
}

func (r *OfferRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.Offer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE transaction_id = $1::uuid ORDER BY created_at, id`, transactionID)
	if isInvalidUUID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("list offers", err)
	}
	defer rows.Close()

	var out []*domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, wrap("scan offer", err)
		}
		out = append(out, offer)
	}
	return out, wrap("list offers", rows.Err())
}

// UpdateStatus só resolve ofertas abertas. Oferta resolvida é imutável.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE offers SET status = $1 WHERE id = $2::uuid AND status = 'open'`, string(status), id)
	if isUniqueViolation(err) {
		// uniq_offers_winner: outra oferta já venceu
		return &domain.ConflictError{Entity: "offer", ID: id, Reason: "transaction already has a winner"}
	}
	if isInvalidUUID(err) {
		return &domain.NotFoundError{Entity: "offer", ID: id}
	}
	if err != nil {
		return wrap("update offer status", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &domain.ConflictError{Entity: "offer", ID: id, Reason: "already resolved"}
	}
	return nil
}

func (r *OfferRepository) WithTx(tx gateway.TransactionObject) gateway.OfferRepository {
	return &OfferRepository{db: txOrPool(r.db, tx)}
}

func scanOffer(row pgx.Row) (*domain.Offer, error) {
	var (
		offer          domain.Offer
		amount, status string
	)
	err := row.Scan(&offer.ID, &offer.TransactionID, &offer.UserID, &amount, &offer.ETAMinutes,
		&offer.Notes, &status, &offer.CreatedAt)
	if err != nil {
		return nil, err
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	offer.Amount = value
	offer.Status = domain.OfferStatus(status)
	return &offer, nil
}
