package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/session"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// Helpers para resposta JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Falha ao codificar resposta JSON")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondDomainError faz o mapeamento de Erros de Domínio -> HTTP Status Code
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Payload inválido", Fields: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTransport):
		// Retentável: banco lento ou fora do ar
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Armazenamento indisponível")
		w.Header().Set("Retry-After", "1")
		respondError(w, http.StatusServiceUnavailable, "Serviço temporariamente indisponível")
	default:
		// Erro interno (bug, invariante quebrada, etc)
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Erro interno ao processar requisição")
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Payload inválido")
		return false
	}
	return true
}

// currentUser lê o usuário injetado pelo middleware de sessão.
func currentUser(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Sessão ausente")
		return nil, false
	}
	return s, true
}
