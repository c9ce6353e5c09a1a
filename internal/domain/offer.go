package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferOpen OfferStatus = "open"
	OfferWon  OfferStatus = "won"
	OfferLost OfferStatus = "lost"
)

// Offer é o lance de um trader sobre uma transação pendente.
// Imutável depois de resolvida (won/lost).
type Offer struct {
	ID            string
	TransactionID string
	UserID        string
	Amount        decimal.Decimal
	ETAMinutes    int
	Notes         string
	Status        OfferStatus
	CreatedAt     time.Time
}

func (o *Offer) Resolved() bool { return o.Status != OfferOpen }

func (o *Offer) Validate() error {
	verr := &ValidationError{}
	if !o.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	}
	if o.ETAMinutes < 0 {
		verr.Add("eta_minutes", "must not be negative")
	}
	return verr.OrNil()
}

// ResolveOffers marca o vencedor e derruba todos os irmãos.
// Devolve as ofertas que mudaram de status.
func ResolveOffers(offers []*Offer, winnerID string) ([]*Offer, error) {
	var winner *Offer
	for _, o := range offers {
		if o.ID == winnerID {
			winner = o
		}
	}
	if winner == nil {
		return nil, &NotFoundError{Entity: "offer", ID: winnerID}
	}
	if winner.Resolved() {
		return nil, &ConflictError{Entity: "offer", ID: winnerID, Reason: "already " + string(winner.Status)}
	}

	changed := make([]*Offer, 0, len(offers))
	for _, o := range offers {
		switch {
		case o.ID == winnerID:
			o.Status = OfferWon
		case o.Status != OfferLost:
			o.Status = OfferLost
		default:
			continue
		}
		changed = append(changed, o)
	}
	return changed, nil
}
