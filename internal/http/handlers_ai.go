package http

import (
	"net/http"
	"time"

	"financeiro/internal/core"
)

// handleDraftTransactions serves POST /ai/transactions: dictated text
// in, created transactions (plus rejected drafts) out.
func (s *Server) handleDraftTransactions(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		writeError(w, http.StatusServiceUnavailable, "AI features are not configured")
		return
	}

	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	date := core.DateOf(time.Now())
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		date = parsed
	}

	result, err := s.drafts.CreateFromText(r.Context(), req.Text, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	type rejectedResponse struct {
		Description string `json:"description"`
		Reason      string `json:"reason"`
	}
	rejected := make([]rejectedResponse, len(result.Rejected))
	for i, rej := range result.Rejected {
		rejected[i] = rejectedResponse{Description: rej.Draft.Description, Reason: rej.Reason}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"created":  toTransactionResponses(result.Created),
		"rejected": rejected,
	})
}

// handleGenerateServiceOrder serves POST /ai/service-orders.
func (s *Server) handleGenerateServiceOrder(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		writeError(w, http.StatusServiceUnavailable, "AI features are not configured")
		return
	}

	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	order, err := s.drafts.GenerateServiceOrder(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      order.ID,
		"content": order.Content,
	})
}

// handleServiceOrderHistory serves GET /service-orders.
func (s *Server) handleServiceOrderHistory(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		writeError(w, http.StatusServiceUnavailable, "AI features are not configured")
		return
	}

	orders, err := s.drafts.ServiceOrderHistory(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	type orderResponse struct {
		ID        string `json:"id"`
		Content   string `json:"content"`
		CreatedAt int64  `json:"created_at"`
	}
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = orderResponse{ID: o.ID, Content: o.Content, CreatedAt: o.CreatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}
