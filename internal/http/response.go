package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"financeiro/internal/core"
	applog "financeiro/internal/log"
	"financeiro/internal/services"
	"financeiro/internal/store"
)

type transactionResponse struct {
	ID             string                  `json:"id"`
	Description    string                  `json:"description"`
	AmountCents    int64                   `json:"amount_cents"`
	Amount         string                  `json:"amount"`
	Type           string                  `json:"type"`
	Date           string                  `json:"date"`
	PaymentMethods []paymentMethodResponse `json:"payment_methods,omitempty"`
}

type paymentMethodResponse struct {
	Method      string `json:"method"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	out := transactionResponse{
		ID:          tx.ID,
		Description: tx.Description,
		AmountCents: tx.Amount.Cents,
		Amount:      core.FormatBRL(tx.Amount.Cents),
		Type:        string(tx.Type),
		Date:        tx.Date.Format("2006-01-02"),
	}
	for _, pm := range tx.PaymentMethods {
		out.PaymentMethods = append(out.PaymentMethods, paymentMethodResponse{
			Method:      pm.Method,
			AmountCents: pm.Amount.Cents,
			Amount:      core.FormatBRL(pm.Amount.Cents),
		})
	}
	return out
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain and store errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrSplitMismatch),
		errors.Is(err, core.ErrExpenseSplit):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrAIUnavailable):
		slog.Error("AI request failed", applog.FieldError, err)
		writeError(w, http.StatusBadGateway, "AI service failed, try again")
	default:
		slog.Error("Request failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
