package handler

import (
	"net/http"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type OfferHandler struct {
	createUC  *usecase.CreateOfferUseCase
	listUC    *usecase.ListOffersUseCase
	resolveUC *usecase.ResolveOfferUseCase
}

func NewOfferHandler(
	createUC *usecase.CreateOfferUseCase,
	listUC *usecase.ListOffersUseCase,
	resolveUC *usecase.ResolveOfferUseCase,
) *OfferHandler {
	return &OfferHandler{createUC: createUC, listUC: listUC, resolveUC: resolveUC}
}

// Create processa POST /transactions/{id}/offers
func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateOfferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	offer, err := h.createUC.Execute(r.Context(), usecase.CreateOfferInput{
		TransactionID: chi.URLParam(r, "id"),
		UserID:        s.UserID,
		Amount:        req.Amount,
		ETAMinutes:    req.ETAMinutes,
		Notes:         req.Notes,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newOfferResponse(offer))
}

func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	offers, err := h.listUC.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newOfferResponses(offers))
}

// Resolve processa POST /offers/{id}/resolve com {"outcome": "won"|"lost"}
func (h *OfferHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req OutcomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	output, err := h.resolveUC.Execute(r.Context(), usecase.ResolveOfferInput{
		OfferID: chi.URLParam(r, "id"),
		UserID:  s.UserID,
		Outcome: domain.OfferStatus(req.Outcome),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ResolveOfferResponse{
		Transaction: newTransactionResponse(output.Transaction),
		Offers:      newOfferResponses(output.Offers),
	})
}
