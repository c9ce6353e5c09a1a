package handler

import (
	"net/http"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/session"
	"github.com/rs/zerolog/log"
)

type SessionHandler struct {
	registry *session.Registry
}

func NewSessionHandler(registry *session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// SignOut encerra todas as sessões abertas do usuário (streams inclusos).
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}
	closed := h.registry.SignOut(s.UserID)
	log.Info().Str("user_id", s.UserID).Int("sessions", closed).Msg("Sessão encerrada")
	w.WriteHeader(http.StatusNoContent)
}
