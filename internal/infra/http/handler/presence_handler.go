package handler

import (
	"net/http"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/presence"
)

type PresenceResponse struct {
	Online    int                 `json:"online"`
	Operators []presence.Operator `json:"operators"`
}

// PresenceHandler expõe o roster. Nunca falha: presença é só informativa.
type PresenceHandler struct {
	roster *presence.Roster
}

func NewPresenceHandler(roster *presence.Roster) *PresenceHandler {
	return &PresenceHandler{roster: roster}
}

func (h *PresenceHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, PresenceResponse{
		Online:    h.roster.Online(),
		Operators: h.roster.Snapshot(),
	})
}
