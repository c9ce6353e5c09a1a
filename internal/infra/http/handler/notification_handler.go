package handler

import (
	"net/http"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/approval"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/notification"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 25 * time.Second
	streamPongTimeout  = 60 * time.Second
	streamBuffer       = 16
)

// StreamMessage é o que o dashboard recebe no websocket de notificações.
type StreamMessage struct {
	Kind         notification.ChangeKind `json:"kind"`
	Notification NotificationResponse    `json:"notification"`
}

type NotificationHandler struct {
	store    *notification.Store
	upgrader websocket.Upgrader
}

func NewNotificationHandler(store *notification.Store) *NotificationHandler {
	return &NotificationHandler{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// A sessão já foi validada pelo middleware antes do upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// List devolve as notificações do usuário, mais novas primeiro.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.store.List(r.Context(), s.UserID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, newNotificationResponse(n))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}
	count, err := h.store.UnreadCount(r.Context(), s.UserID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, UnreadResponse{Count: count, Badge: notification.Badge(count)})
}

// MarkRead é idempotente. Notificação de outro usuário responde 404.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	n, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if n.RecipientID != s.UserID {
		respondDomainError(w, r, &domain.NotFoundError{Entity: "notification", ID: id})
		return
	}
	if err := h.store.MarkRead(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approval devolve o modal da notificação não lida mais antiga. Sem pendências: 204.
func (h *NotificationHandler) Approval(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}
	n, err := h.store.FirstUnread(r.Context(), s.UserID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	view := approval.Render(n)
	if view == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Stream empurra as mudanças do usuário da sessão até a conexão cair ou a sessão encerrar.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}

	send := make(chan StreamMessage, streamBuffer)
	signedOut := make(chan struct{}, 1)

	// O despacho do Store é síncrono: o observador nunca bloqueia.
	unsubscribe := h.store.Subscribe(func(c notification.Change) {
		if c.Notification.RecipientID != s.UserID {
			return
		}
		select {
		case send <- StreamMessage{Kind: c.Kind, Notification: newNotificationResponse(c.Notification)}:
		default:
			log.Warn().Str("user_id", s.UserID).Msg("Buffer de notificações cheio, mudança descartada")
		}
	})
	defer unsubscribe()

	unsubscribeSession := s.Subscribe(func(session.Event) {
		select {
		case signedOut <- struct{}{}:
		default:
		}
	})
	defer unsubscribeSession()

	// Assinamos antes do upgrade para não perder mudanças feitas logo após o handshake.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Falha no upgrade do websocket de notificações")
		return
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-readerDone:
			return
		case <-signedOut:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session signed out"))
			return
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("Falha ao enviar notificação")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
