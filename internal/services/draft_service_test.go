package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"financeiro/internal/ai"
	"financeiro/internal/core"
	"financeiro/internal/store/memory"
)

type fakeDrafter struct {
	drafts []ai.TransactionDraft
	order  string
	err    error
}

func (f *fakeDrafter) TransactionDrafts(ctx context.Context, inputText string) ([]ai.TransactionDraft, error) {
	return f.drafts, f.err
}

func (f *fakeDrafter) ServiceOrder(ctx context.Context, inputText string) (string, error) {
	return f.order, f.err
}

func TestDraftService_CreateFromText(t *testing.T) {
	st := memory.NewWithDefaults()
	transactions := NewTransactionService(st, nil, nil)
	drafter := &fakeDrafter{drafts: []ai.TransactionDraft{
		{Type: "expense", Description: "mercado", Amount: json.Number("45.9")},
		{Type: "income", Description: "revisão bomba", Amount: json.Number("500"), PaymentMethod: "cartão 4x"},
		{Type: "expense", Description: "luz", Amount: json.Number("abc")},
	}}
	svc := NewDraftService(drafter, transactions, st, 5)

	result, err := svc.CreateFromText(context.Background(), "texto ditado", core.NewDate(2025, 3, 10))
	if err != nil {
		t.Fatalf("CreateFromText() error = %v", err)
	}

	if len(result.Created) != 2 {
		t.Fatalf("created %d transactions, want 2", len(result.Created))
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("rejected %d drafts, want 1", len(result.Rejected))
	}

	expense := result.Created[0]
	if expense.Description != "MERCADO" || expense.Amount.Cents != 4590 {
		t.Errorf("expense = %+v", expense)
	}
	if len(expense.PaymentMethods) != 0 {
		t.Error("expense draft should have no payment methods")
	}

	income := result.Created[1]
	if income.Type != core.Income || income.Amount.Cents != 50000 {
		t.Errorf("income = %+v", income)
	}
	if len(income.PaymentMethods) != 1 {
		t.Fatalf("income should get a single full-amount split, got %d", len(income.PaymentMethods))
	}
	pm := income.PaymentMethods[0]
	if pm.Method != core.MethodCard || pm.Amount.Cents != 50000 {
		t.Errorf("income split = %+v", pm)
	}

	stored, err := st.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored %d transactions, want 2", len(stored))
	}
}

func TestDraftService_CreateFromText_DrafterError(t *testing.T) {
	st := memory.NewWithDefaults()
	svc := NewDraftService(&fakeDrafter{err: errors.New("model unavailable")}, NewTransactionService(st, nil, nil), st, 5)

	_, err := svc.CreateFromText(context.Background(), "texto", core.NewDate(2025, 3, 10))
	if err == nil {
		t.Fatal("CreateFromText() should propagate drafter errors")
	}
	if !errors.Is(err, ErrAIUnavailable) {
		t.Errorf("error = %v, want ErrAIUnavailable", err)
	}
}

func TestDraftService_GenerateServiceOrder(t *testing.T) {
	st := memory.NewWithDefaults()
	order := "01 KIT DE VEDAÇÃO\n\nVALOR: R$500,00\nPAGAMENTO: CARTÃO 4X\nVEICULO: LIFAN\nPLACA: ous3j11"
	svc := NewDraftService(&fakeDrafter{order: order}, NewTransactionService(st, nil, nil), st, 2)
	ctx := context.Background()

	saved, err := svc.GenerateServiceOrder(ctx, "kit de vedação lifan")
	if err != nil {
		t.Fatalf("GenerateServiceOrder() error = %v", err)
	}
	if saved.ID == "" || saved.Content != order {
		t.Errorf("saved order = %+v", saved)
	}

	// History honors the configured limit, most recent first.
	for i := 0; i < 3; i++ {
		if _, err := svc.GenerateServiceOrder(ctx, "outra nota"); err != nil {
			t.Fatalf("GenerateServiceOrder() error = %v", err)
		}
	}
	history, err := svc.ServiceOrderHistory(ctx)
	if err != nil {
		t.Fatalf("ServiceOrderHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
}
