package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financeiro/internal/ai"
	"financeiro/internal/core"
	"financeiro/internal/store"
)

// ErrAIUnavailable marks failures of the language-model call itself, as
// opposed to failures storing what it produced.
var ErrAIUnavailable = errors.New("AI service unavailable")

// Drafter is the AI boundary the draft service depends on.
type Drafter interface {
	TransactionDrafts(ctx context.Context, inputText string) ([]ai.TransactionDraft, error)
	ServiceOrder(ctx context.Context, inputText string) (string, error)
}

// DraftService turns dictated text into stored transactions and
// formatted service orders.
type DraftService struct {
	drafter      Drafter
	transactions *TransactionService
	orders       store.ServiceOrderStore
	historyLimit int
}

func NewDraftService(drafter Drafter, transactions *TransactionService, orders store.ServiceOrderStore, historyLimit int) *DraftService {
	return &DraftService{
		drafter:      drafter,
		transactions: transactions,
		orders:       orders,
		historyLimit: historyLimit,
	}
}

// DraftResult reports what happened to each proposed entry.
type DraftResult struct {
	Created  []core.Transaction
	Rejected []RejectedDraft
}

type RejectedDraft struct {
	Draft  ai.TransactionDraft
	Reason string
}

// CreateFromText extracts transaction drafts from the text and stores
// every valid one, dated today. Invalid drafts are reported back, not
// dropped silently.
func (s *DraftService) CreateFromText(ctx context.Context, inputText string, date core.Date) (DraftResult, error) {
	drafts, err := s.drafter.TransactionDrafts(ctx, inputText)
	if err != nil {
		return DraftResult{}, fmt.Errorf("%w: %w", ErrAIUnavailable, err)
	}

	var result DraftResult
	for _, d := range drafts {
		tx, err := draftToTransaction(d, date)
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedDraft{Draft: d, Reason: err.Error()})
			continue
		}
		created, err := s.transactions.Create(ctx, tx)
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedDraft{Draft: d, Reason: err.Error()})
			continue
		}
		result.Created = append(result.Created, created)
	}

	slog.InfoContext(ctx, "Processed transaction drafts",
		"created", len(result.Created),
		"rejected", len(result.Rejected))
	return result, nil
}

// GenerateServiceOrder formats the dictated note and appends it to the
// history.
func (s *DraftService) GenerateServiceOrder(ctx context.Context, inputText string) (store.ServiceOrder, error) {
	content, err := s.drafter.ServiceOrder(ctx, inputText)
	if err != nil {
		return store.ServiceOrder{}, fmt.Errorf("%w: %w", ErrAIUnavailable, err)
	}

	id, err := s.orders.AppendServiceOrder(ctx, content)
	if err != nil {
		return store.ServiceOrder{}, fmt.Errorf("save service order: %w", err)
	}
	return store.ServiceOrder{ID: id, Content: content}, nil
}

// ServiceOrderHistory lists the most recent generated orders.
func (s *DraftService) ServiceOrderHistory(ctx context.Context) ([]store.ServiceOrder, error) {
	return s.orders.ListServiceOrders(ctx, s.historyLimit)
}

// draftToTransaction builds a full transaction from a model draft. An
// income draft's single payment method becomes a full-amount split.
func draftToTransaction(d ai.TransactionDraft, date core.Date) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(d.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("draft amount %q: %w", d.Amount, err)
	}

	tx := core.Transaction{
		Description: d.Description,
		Amount:      core.Money{Cents: cents},
		Type:        core.TransactionType(d.Type),
		Date:        date,
	}
	if tx.Type == core.Income {
		method := d.PaymentMethod
		if method == "" {
			method = core.MethodOther
		}
		tx.PaymentMethods = []core.PaymentMethod{
			{Method: method, Amount: tx.Amount},
		}
	}
	return tx, nil
}
