// Package approval monta o modal de aprovação exibido quando chega uma notificação.
// O modal é só uma visão: quem decide marcar como lida é o chamador.
package approval

import "github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"

type ActionKind string

const (
	ActionClose ActionKind = "close"
	ActionOpen  ActionKind = "open"
)

type Action struct {
	Kind  ActionKind `json:"kind"`
	Label string     `json:"label"`
	Href  string     `json:"href,omitempty"`
}

// View é o conteúdo do modal para uma notificação.
type View struct {
	NotificationID string       `json:"notification_id"`
	Message        string       `json:"message"`
	TransactionID  string       `json:"transaction_id"`
	Amount         domain.Money `json:"amount"`
	Customer       string       `json:"customer"`
	Actions        []Action     `json:"actions"`
}

// Render devolve nil para notificação nil (nada a mostrar).
func Render(n *domain.Notification) *View {
	if n == nil {
		return nil
	}
	v := &View{
		NotificationID: n.ID,
		Message:        n.Message,
		TransactionID:  n.Payload.TransactionID,
		Amount:         n.Payload.Amount,
		Customer:       n.Payload.Customer,
	}
	if n.Payload.Link != "" {
		v.Actions = append(v.Actions, Action{Kind: ActionOpen, Label: "Ver transacción", Href: n.Payload.Link})
	}
	v.Actions = append(v.Actions, Action{Kind: ActionClose, Label: "Cerrar"})
	return v
}

// Modal apresenta uma notificação por vez.
type Modal struct {
	OnClose  func()
	Navigate func(href string)
}

// Close fecha sem nenhum efeito além do OnClose do chamador.
func (m Modal) Close() {
	if m.OnClose != nil {
		m.OnClose()
	}
}

// Open navega para o link da transação e depois fecha. Sem link, só fecha.
func (m Modal) Open(v *View) {
	if v != nil && m.Navigate != nil {
		for _, a := range v.Actions {
			if a.Kind == ActionOpen {
				m.Navigate(a.Href)
				break
			}
		}
	}
	m.Close()
}
