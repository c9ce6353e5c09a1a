package domain

import "time"

// NotificationPayload é o resumo da transação que acompanha o aviso.
type NotificationPayload struct {
	TransactionID string `json:"transaction_id"`
	Amount        Money  `json:"amount"`
	Customer      string `json:"customer"`
	Link          string `json:"link,omitempty"`
}

type Notification struct {
	ID          string
	RecipientID string
	Message     string
	Payload     NotificationPayload
	Unread      bool
	// DedupKey identifica o evento lógico. Reentregas com a mesma chave são ignoradas.
	DedupKey  string
	CreatedAt time.Time
}

// NotificationDedupKey usa (transação, novo status) como identidade do evento.
func NotificationDedupKey(transactionID string, status Status) string {
	return transactionID + ":" + string(status)
}
