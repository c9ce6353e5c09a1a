package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

type Direction string

const (
	DirectionFiatToCrypto Direction = "fiat_to_crypto"
	DirectionCryptoToFiat Direction = "crypto_to_fiat"
)

type RequestOrigin string

const (
	OriginWhatsApp RequestOrigin = "whatsapp"
	OriginAPI      RequestOrigin = "api"
	OriginForm     RequestOrigin = "form"
	OriginManual   RequestOrigin = "manual"
)

func (o RequestOrigin) Valid() bool {
	switch o {
	case OriginWhatsApp, OriginAPI, OriginForm, OriginManual:
		return true
	}
	return false
}

// Status do ciclo de vida: pending -> escrow -> completed|failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusEscrow    Status = "escrow"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// rank ordena os estados. Terminais dividem o mesmo nível.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusEscrow:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	}
	return -1
}

func (s Status) Valid() bool { return s.rank() >= 0 }

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

// CanTransitionTo aplica a máquina de estados. Nunca regride, nunca sai de um terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusEscrow || next == StatusFailed
	case StatusEscrow:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Money guarda o valor em decimal para não perder precisão em cripto.
type Money struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// Client são os metadados do cliente final da operação OTC.
type Client struct {
	Alias  string `json:"alias"`
	KYCURL string `json:"kyc_url,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Transaction é a operação OTC criada por um trader.
// Clean Architecture: sem JSON de API nem SQL aqui, só as regras.
type Transaction struct {
	ID            string
	Code          string
	UserID        string
	Type          TransactionType
	Direction     Direction
	Chain         string
	Token         string
	Amount        Money
	Status        Status
	Client        Client
	RequestOrigin RequestOrigin
	SLAMinutes    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransitionTo muda o status se a máquina de estados permitir.
func (t *Transaction) TransitionTo(next Status) error {
	if !t.Status.CanTransitionTo(next) {
		return &ConflictError{
			Entity: "transaction",
			ID:     t.ID,
			Reason: "cannot move from " + string(t.Status) + " to " + string(next),
		}
	}
	t.Status = next
	return nil
}

// Validate confere os campos obrigatórios de uma transação nova.
func (t *Transaction) Validate() error {
	verr := &ValidationError{}
	switch t.Type {
	case TransactionBuy, TransactionSell:
	case "":
		verr.Add("type", "required")
	default:
		verr.Add("type", "must be buy or sell")
	}
	switch t.Direction {
	case "", DirectionFiatToCrypto, DirectionCryptoToFiat:
	default:
		verr.Add("direction", "must be fiat_to_crypto or crypto_to_fiat")
	}
	if strings.TrimSpace(t.Chain) == "" {
		verr.Add("chain", "required")
	}
	if strings.TrimSpace(t.Token) == "" {
		verr.Add("token", "required")
	}
	if !t.Amount.Value.IsPositive() {
		verr.Add("amount.value", "must be greater than zero")
	}
	if strings.TrimSpace(t.Amount.Currency) == "" {
		verr.Add("amount.currency", "required")
	}
	if t.RequestOrigin != "" && !t.RequestOrigin.Valid() {
		verr.Add("request_origin", "must be one of whatsapp, api, form, manual")
	}
	if t.SLAMinutes < 0 {
		verr.Add("sla_minutes", "must not be negative")
	}
	return verr.OrNil()
}
