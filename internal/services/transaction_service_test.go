package services

import (
	"context"
	"errors"
	"testing"

	"financeiro/internal/amqp"
	"financeiro/internal/core"
	"financeiro/internal/store"
	"financeiro/internal/store/memory"
)

type fakePublisher struct {
	syncs   []int64
	deletes []*amqp.TransactionDeleteMessage
	fail    bool
}

func (f *fakePublisher) PublishTransactionSync(ctx context.Context, id, version int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.syncs = append(f.syncs, id)
	return nil
}

func (f *fakePublisher) PublishTransactionDelete(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.deletes = append(f.deletes, msg)
	return nil
}

func incomeTx(desc string, cents int64) core.Transaction {
	return core.Transaction{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Type:        core.Income,
		Date:        core.NewDate(2025, 3, 10),
		PaymentMethods: []core.PaymentMethod{
			{Method: "dinheiro", Amount: core.Money{Cents: cents}},
		},
	}
}

func TestTransactionService_Create(t *testing.T) {
	st := memory.NewWithDefaults()
	pub := &fakePublisher{}
	svc := NewTransactionService(st, pub, nil)

	created, err := svc.Create(context.Background(), incomeTx("mercado", 4590))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Error("Create() should assign an id")
	}
	if created.Description != "MERCADO" {
		t.Errorf("Description = %q, want MERCADO", created.Description)
	}
	if created.PaymentMethods[0].Method != core.MethodCash {
		t.Errorf("Method = %q, want %q", created.PaymentMethods[0].Method, core.MethodCash)
	}
	if len(pub.syncs) != 1 {
		t.Errorf("published %d sync messages, want 1", len(pub.syncs))
	}
}

func TestTransactionService_Create_Invalid(t *testing.T) {
	svc := NewTransactionService(memory.NewWithDefaults(), &fakePublisher{}, nil)

	tx := incomeTx("salário", 1000)
	tx.PaymentMethods[0].Amount.Cents = 999

	if _, err := svc.Create(context.Background(), tx); !errors.Is(err, core.ErrSplitMismatch) {
		t.Errorf("Create() error = %v, want ErrSplitMismatch", err)
	}
}

func TestTransactionService_Create_PublishFailureIsNotFatal(t *testing.T) {
	svc := NewTransactionService(memory.NewWithDefaults(), &fakePublisher{fail: true}, nil)

	created, err := svc.Create(context.Background(), incomeTx("mercado", 4590))
	if err != nil {
		t.Fatalf("Create() error = %v, publish failure must not fail the write", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Description != "MERCADO" {
		t.Errorf("stored description = %q, want MERCADO", got.Description)
	}
}

func TestTransactionService_Delete_CarriesRowPayload(t *testing.T) {
	st := memory.NewWithDefaults()
	pub := &fakePublisher{}
	svc := NewTransactionService(st, pub, nil)

	created, err := svc.Create(context.Background(), incomeTx("revisão bomba", 50000))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	if len(pub.deletes) != 1 {
		t.Fatalf("published %d delete messages, want 1", len(pub.deletes))
	}
	msg := pub.deletes[0]
	if msg.Description != "REVISÃO BOMBA" || msg.AmountCents != 50000 || msg.Date != "2025-03-10" {
		t.Errorf("delete payload = %+v", msg)
	}
}

func TestTransactionService_Delete_NotFound(t *testing.T) {
	svc := NewTransactionService(memory.NewWithDefaults(), &fakePublisher{}, nil)

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestTransactionService_Update(t *testing.T) {
	st := memory.NewWithDefaults()
	svc := NewTransactionService(st, &fakePublisher{}, nil)

	created, err := svc.Create(context.Background(), incomeTx("mercado", 4590))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	created.Amount.Cents = 5000
	created.PaymentMethods[0].Amount.Cents = 5000
	updated, err := svc.Update(context.Background(), created)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Amount.Cents != 5000 {
		t.Errorf("Amount = %d, want 5000", updated.Amount.Cents)
	}

	got, _ := svc.Get(context.Background(), created.ID)
	if got.Amount.Cents != 5000 {
		t.Errorf("stored Amount = %d, want 5000", got.Amount.Cents)
	}
}

func TestTransactionService_InvalidatesReports(t *testing.T) {
	st := memory.NewWithDefaults()
	reports := NewReportService(st)
	svc := NewTransactionService(st, nil, reports)
	ctx := context.Background()

	ym := core.YearMonth{Year: 2025, Month: 3}
	before, err := reports.Monthly(ctx, ym)
	if err != nil {
		t.Fatalf("Monthly() error = %v", err)
	}
	if before.Summary.TotalIncome.Cents != 0 {
		t.Fatalf("TotalIncome = %d, want 0", before.Summary.TotalIncome.Cents)
	}

	if _, err := svc.Create(ctx, incomeTx("mercado", 4590)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	after, err := reports.Monthly(ctx, ym)
	if err != nil {
		t.Fatalf("Monthly() error = %v", err)
	}
	if after.Summary.TotalIncome.Cents != 4590 {
		t.Errorf("TotalIncome after write = %d, want 4590", after.Summary.TotalIncome.Cents)
	}
}
