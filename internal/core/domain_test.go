package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2024, 1, 1), true},
		{NewDate(2024, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateOfNormalizesToUTCDay(t *testing.T) {
	// 23:30 in UTC-3 is already the next day in UTC; date grouping must not
	// depend on the wall-clock zone the timestamp arrived in.
	loc := time.FixedZone("BRT", -3*60*60)
	d := DateOf(time.Date(2024, 3, 5, 23, 30, 0, 0, loc))
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 6 {
		t.Fatalf("expected 2024-03-06, got %04d-%02d-%02d", d.Year(), d.Month(), d.Day())
	}
	if h := d.Time.Hour(); h != 0 {
		t.Fatalf("expected day resolution, got hour %d", h)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestCanonicalMethod(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"Dinheiro", MethodCash},
		{"dinheiro ", MethodCash},
		{"Cartão", MethodCard},
		{"cartão 4x", MethodCard},
		{"debito", MethodCard},
		{"crédito", MethodCard},
		{"PIX", MethodPix},
		{"Transferência", MethodTransfer},
		{"boleto", MethodOther},
		{"", MethodOther},
	}
	for _, tc := range cases {
		if got := CanonicalMethod(tc.in); got != tc.out {
			t.Fatalf("%q expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Description: "OS 123",
		Amount:      Money{Cents: 100000},
		Type:        Income,
		Date:        NewDate(2024, 3, 5),
		PaymentMethods: []PaymentMethod{
			{Method: MethodCash, Amount: Money{Cents: 60000}},
			{Method: MethodCard, Amount: Money{Cents: 40000}},
		},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	t.Run("split must sum to amount", func(t *testing.T) {
		bad := good
		bad.PaymentMethods = []PaymentMethod{
			{Method: MethodCash, Amount: Money{Cents: 60000}},
			{Method: MethodCard, Amount: Money{Cents: 39999}},
		}
		if err := bad.Validate(); !errors.Is(err, ErrSplitMismatch) {
			t.Fatalf("expected ErrSplitMismatch, got %v", err)
		}
	})

	t.Run("expense carries no split", func(t *testing.T) {
		bad := Transaction{
			Description:    "MERCADO",
			Amount:         Money{Cents: 3000},
			Type:           Expense,
			Date:           NewDate(2024, 3, 10),
			PaymentMethods: []PaymentMethod{{Method: MethodCash, Amount: Money{Cents: 3000}}},
		}
		if err := bad.Validate(); !errors.Is(err, ErrExpenseSplit) {
			t.Fatalf("expected ErrExpenseSplit, got %v", err)
		}
	})

	bads := []Transaction{
		{Description: "", Amount: Money{Cents: 100}, Type: Expense, Date: NewDate(2024, 1, 1)},
		{Description: "A", Amount: Money{Cents: 0}, Type: Expense, Date: NewDate(2024, 1, 1)},
		{Description: "A", Amount: Money{Cents: 100}, Type: "transfer", Date: NewDate(2024, 1, 1)},
		{Description: "A", Amount: Money{Cents: 100}, Type: Expense, Date: Date{}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionNormalize(t *testing.T) {
	tx := Transaction{
		Description: "  troca de óleo ",
		Amount:      Money{Cents: 500},
		Type:        Income,
		Date:        NewDate(2024, 3, 5),
		PaymentMethods: []PaymentMethod{
			{Method: "cartão 2x", Amount: Money{Cents: 500}},
		},
	}
	got := tx.Normalize()
	if got.Description != "TROCA DE ÓLEO" {
		t.Fatalf("description not uppercased: %q", got.Description)
	}
	if got.PaymentMethods[0].Method != MethodCard {
		t.Fatalf("method not canonicalized: %q", got.PaymentMethods[0].Method)
	}
	// The receiver must stay untouched.
	if tx.PaymentMethods[0].Method != "cartão 2x" {
		t.Fatalf("Normalize mutated its input")
	}
}
