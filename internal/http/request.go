package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"financeiro/internal/core"
)

const maxBodyBytes = 64 * 1024

// transactionRequest is the wire form of a create/update. Amounts are
// decimal strings ("45,90" or "45.90") so the client never does cent
// math.
type transactionRequest struct {
	Description    string                 `json:"description"`
	Amount         string                 `json:"amount"`
	Type           string                 `json:"type"`
	Date           string                 `json:"date"`
	PaymentMethods []paymentMethodRequest `json:"payment_methods,omitempty"`
}

type paymentMethodRequest struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

type draftRequest struct {
	Text string `json:"text"`
	Date string `json:"date,omitempty"`
}

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", req.Amount, err)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", req.Date, err)
	}

	tx := core.Transaction{
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Type:        core.TransactionType(req.Type),
		Date:        date,
	}
	for _, pm := range req.PaymentMethods {
		pmCents, err := core.ParseDecimalToCents(pm.Amount)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("payment method amount %q: %w", pm.Amount, err)
		}
		tx.PaymentMethods = append(tx.PaymentMethods, core.PaymentMethod{
			Method: pm.Method,
			Amount: core.Money{Cents: pmCents},
		})
	}
	return tx, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(t), nil
}
