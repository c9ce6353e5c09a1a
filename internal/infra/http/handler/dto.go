package handler

import (
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/shopspring/decimal"
)

// DTOs (Data Transfer Objects) para Request/Response
// Usamos tags JSON para mapear snake_case (padrão de APIs)

type CreateTransactionRequest struct {
	Type          domain.TransactionType `json:"type"`
	Direction     domain.Direction       `json:"direction"`
	Chain         string                 `json:"chain"`
	Token         string                 `json:"token"`
	Amount        domain.Money           `json:"amount"`
	Client        domain.Client          `json:"client"`
	RequestOrigin domain.RequestOrigin   `json:"request_origin"`
	SLAMinutes    int                    `json:"sla_minutes"`
}

type TransactionResponse struct {
	ID            string                 `json:"id"`
	Code          string                 `json:"code"`
	UserID        string                 `json:"user_id"`
	Type          domain.TransactionType `json:"type"`
	Direction     domain.Direction       `json:"direction"`
	Chain         string                 `json:"chain"`
	Token         string                 `json:"token"`
	Amount        domain.Money           `json:"amount"`
	Status        domain.Status          `json:"status"`
	Client        domain.Client          `json:"client"`
	RequestOrigin domain.RequestOrigin   `json:"request_origin"`
	SLAMinutes    int                    `json:"sla_minutes"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func newTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            tx.ID,
		Code:          tx.Code,
		UserID:        tx.UserID,
		Type:          tx.Type,
		Direction:     tx.Direction,
		Chain:         tx.Chain,
		Token:         tx.Token,
		Amount:        tx.Amount,
		Status:        tx.Status,
		Client:        tx.Client,
		RequestOrigin: tx.RequestOrigin,
		SLAMinutes:    tx.SLAMinutes,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}

type CreateOfferRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	ETAMinutes int             `json:"eta_minutes"`
	Notes      string          `json:"notes"`
}

type OfferResponse struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transaction_id"`
	UserID        string             `json:"user_id"`
	Amount        decimal.Decimal    `json:"amount"`
	ETAMinutes    int                `json:"eta_minutes"`
	Notes         string             `json:"notes,omitempty"`
	Status        domain.OfferStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}

func newOfferResponse(o *domain.Offer) OfferResponse {
	return OfferResponse{
		ID:            o.ID,
		TransactionID: o.TransactionID,
		UserID:        o.UserID,
		Amount:        o.Amount,
		ETAMinutes:    o.ETAMinutes,
		Notes:         o.Notes,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
	}
}

func newOfferResponses(offers []*domain.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, newOfferResponse(o))
	}
	return out
}

type OutcomeRequest struct {
	Outcome string `json:"outcome"`
}

type ResolveOfferResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Offers      []OfferResponse     `json:"offers"`
}

type FinishResponse struct {
	Transaction  TransactionResponse   `json:"transaction"`
	Notification *NotificationResponse `json:"notification,omitempty"`
}

type NotificationResponse struct {
	ID        string                     `json:"id"`
	Message   string                     `json:"message"`
	Payload   domain.NotificationPayload `json:"payload"`
	Unread    bool                       `json:"unread"`
	CreatedAt time.Time                  `json:"created_at"`
}

func newNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Payload:   n.Payload,
		Unread:    n.Unread,
		CreatedAt: n.CreatedAt,
	}
}

type UnreadResponse struct {
	Count int    `json:"count"`
	Badge string `json:"badge"`
}
