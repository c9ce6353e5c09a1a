package postgres

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const notificationColumns = `id::text, recipient_id, message, transaction_id, amount::text, currency, customer, link,
	unread, dedup_key, created_at`

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert usa ON CONFLICT no dedup_key: reentregas devolvem a linha original.
func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) (*domain.Notification, bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, message, transaction_id, amount, currency, customer, link,
			unread, dedup_key, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (dedup_key) WHERE dedup_key IS NOT NULL DO NOTHING`,
		n.ID, n.RecipientID, n.Message, n.Payload.TransactionID, n.Payload.Amount.Value.String(),
		n.Payload.Amount.Currency, n.Payload.Customer, n.Payload.Link, n.Unread, textToPgType(n.DedupKey), n.CreatedAt,
	)
	if err != nil {
		return nil, false, wrap("insert notification", err)
	}
	if tag.RowsAffected() == 1 {
		stored := *n
		return &stored, true, nil
	}

	existing, err := scanNotification(r.db.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE dedup_key = $1`, n.DedupKey))
	if err != nil {
		return nil, false, wrap("load duplicated notification", err)
	}
	return existing, false, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET unread = FALSE WHERE id = $1::uuid AND unread`, id)
	if isInvalidUUID(err) {
		return false, &domain.NotFoundError{Entity: "notification", ID: id}
	}
	if err != nil {
		return false, wrap("mark notification read", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	// Já lida ou inexistente: distinguimos para devolver NotFound.
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1::uuid`, id))
	if err != nil {
		if isMissing(err) {
			return nil, &domain.NotFoundError{Entity: "notification", ID: id}
		}
		return nil, wrap("get notification", err)
	}
	return n, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC`, recipientID)
	if err != nil {
		return nil, wrap("list notifications", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, wrap("scan notification", err)
		}
		out = append(out, *n)
	}
	return out, wrap("list notifications", rows.Err())
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE recipient_id = $1 AND unread`, recipientID).Scan(&count)
	if err != nil {
		return 0, wrap("count unread notifications", err)
	}
	return count, nil
}

func (r *NotificationRepository) WithTx(tx gateway.TransactionObject) gateway.NotificationRepository {
	return &NotificationRepository{db: txOrPool(r.db, tx)}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n        domain.Notification
		amount   string
		dedupKey pgtype.Text
	)
	err := row.Scan(&n.ID, &n.RecipientID, &n.Message, &n.Payload.TransactionID, &amount, &n.Payload.Amount.Currency,
		&n.Payload.Customer, &n.Payload.Link, &n.Unread, &dedupKey, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	n.Payload.Amount.Value = value
	n.DedupKey = dedupKey.String
	return &n, nil
}

// Helper para converter string vazia -> NULL
func textToPgType(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
