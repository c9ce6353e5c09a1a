package handler

import (
	"net/http"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// TransactionHandler expõe o ciclo de vida da transação via HTTP
type TransactionHandler struct {
	createUC *usecase.CreateTransactionUseCase
	getUC    *usecase.GetTransactionUseCase
	listUC   *usecase.ListTransactionsUseCase
	settleUC *usecase.SettleTransactionUseCase
	cancelUC *usecase.CancelTransactionUseCase
}

func NewTransactionHandler(
	createUC *usecase.CreateTransactionUseCase,
	getUC *usecase.GetTransactionUseCase,
	listUC *usecase.ListTransactionsUseCase,
	settleUC *usecase.SettleTransactionUseCase,
	cancelUC *usecase.CancelTransactionUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		createUC: createUC,
		getUC:    getUC,
		listUC:   listUC,
		settleUC: settleUC,
		cancelUC: cancelUC,
	}
}

// Create processa POST /transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.createUC.Execute(r.Context(), usecase.CreateTransactionInput{
		UserID:        s.UserID,
		Type:          req.Type,
		Direction:     req.Direction,
		Chain:         req.Chain,
		Token:         req.Token,
		Amount:        req.Amount.Value,
		Currency:      req.Amount.Currency,
		Client:        req.Client,
		RequestOrigin: req.RequestOrigin,
		SLAMinutes:    req.SLAMinutes,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

// Get só enxerga transações do próprio usuário. As dos outros respondem 404.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}

	tx, err := h.getUC.Execute(r.Context(), usecase.GetTransactionInput{
		TransactionID: chi.URLParam(r, "id"),
		UserID:        s.UserID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newTransactionResponse(tx))
}

// List aplica o filtro da query string (type, date_preset, from, to) nas transações do usuário.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}

	txs, err := h.listUC.Execute(r.Context(), usecase.ListTransactionsInput{
		UserID: s.UserID,
		Filter: filterFromQuery(r),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, newTransactionResponse(&txs[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *TransactionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req OutcomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	output, err := h.settleUC.Execute(r.Context(), usecase.SettleTransactionInput{
		TransactionID: chi.URLParam(r, "id"),
		UserID:        s.UserID,
		Outcome:       domain.Status(req.Outcome),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newFinishResponse(output))
}

func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s, ok := currentUser(w, r)
	if !ok {
		return
	}

	output, err := h.cancelUC.Execute(r.Context(), usecase.CancelTransactionInput{
		TransactionID: chi.URLParam(r, "id"),
		UserID:        s.UserID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newFinishResponse(output))
}

func newFinishResponse(output *usecase.FinishOutput) FinishResponse {
	resp := FinishResponse{Transaction: newTransactionResponse(output.Transaction)}
	if output.Notification != nil {
		n := newNotificationResponse(*output.Notification)
		resp.Notification = &n
	}
	return resp
}

// filterFromQuery parte do filtro padrão (all, this_month). Limites só valem com date_preset=range.
func filterFromQuery(r *http.Request) domain.FilterValue {
	q := r.URL.Query()
	f := domain.DefaultFilter()
	if t := q.Get("type"); t != "" {
		f = f.WithType(domain.TypeFilter(t))
	}

	preset := domain.DatePreset(q.Get("date_preset"))
	switch preset {
	case "":
		return f
	case domain.PresetRange:
		var from, to *string
		// Parâmetro vazio (from=) conta como ausente.
		if v := q.Get("from"); v != "" {
			from = &v
		}
		if v := q.Get("to"); v != "" {
			to = &v
		}
		return f.WithRange(from, to)
	default:
		return f.WithDatePreset(preset)
	}
}
