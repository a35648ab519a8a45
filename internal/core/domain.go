package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Known payment method labels. Free-text labels are folded onto this set at
// ingestion; MethodOther collects everything unrecognized.
const (
	MethodCash     = "Dinheiro"
	MethodCard     = "Cartão"
	MethodPix      = "Pix"
	MethodTransfer = "Transferência"
	MethodOther    = "Outro"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// PaymentMethod is one slice of an income transaction's amount.
	PaymentMethod struct {
		Method string
		Amount Money
	}

	Transaction struct {
		ID             string // assigned by the store, stable for the record's lifetime
		Description    string // uppercased at creation
		Amount         Money
		Type           TransactionType
		Date           Date
		PaymentMethods []PaymentMethod
	}

	// Preset pre-fills entry forms with a common description/type pair.
	Preset struct {
		ID          string
		Description string
		Type        TransactionType
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrSplitMismatch    = errors.New("payment split does not sum to transaction amount")
	ErrExpenseSplit     = errors.New("expense transactions carry no payment methods")
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date at UTC day resolution.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary timestamp to its UTC day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month in UTC.
func (d Date) Day() int {
	return d.Time.UTC().Day()
}

// Month returns the month in UTC.
func (d Date) Month() int {
	return int(d.Time.UTC().Month())
}

// Year returns the year in UTC.
func (d Date) Year() int {
	return d.Time.UTC().Year()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CanonicalMethod folds a free-text payment method label onto the known set.
// Matching is case-insensitive and tolerates the variants the entry forms and
// the draft generator produce ("cartão 2x", "debito", "credito").
func CanonicalMethod(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return MethodOther
	case strings.HasPrefix(l, "dinheiro"):
		return MethodCash
	case strings.HasPrefix(l, "cart"), strings.Contains(l, "debito"), strings.Contains(l, "débito"),
		strings.Contains(l, "credito"), strings.Contains(l, "crédito"):
		return MethodCard
	case strings.HasPrefix(l, "pix"):
		return MethodPix
	case strings.HasPrefix(l, "transfer"):
		return MethodTransfer
	default:
		return MethodOther
	}
}

func (p PaymentMethod) Validate() error {
	if strings.TrimSpace(p.Method) == "" {
		return errors.New("empty payment method label")
	}
	return p.Amount.Validate()
}

// Validate checks the invariants a transaction must satisfy at creation time.
// For income transactions the payment split must sum exactly to the amount;
// amounts are integer cents, so equality is exact rather than epsilon-based.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	switch t.Type {
	case Expense:
		if len(t.PaymentMethods) > 0 {
			return ErrExpenseSplit
		}
	case Income:
		var sum int64
		for _, pm := range t.PaymentMethods {
			if err := pm.Validate(); err != nil {
				return err
			}
			sum += pm.Amount.Cents
		}
		if len(t.PaymentMethods) > 0 && sum != t.Amount.Cents {
			return ErrSplitMismatch
		}
	}
	return nil
}

// Normalize returns a copy with the creation-time normalizations applied:
// uppercased description and canonical payment method labels.
func (t Transaction) Normalize() Transaction {
	out := t
	out.Description = strings.ToUpper(strings.TrimSpace(t.Description))
	if len(t.PaymentMethods) > 0 {
		out.PaymentMethods = make([]PaymentMethod, len(t.PaymentMethods))
		for i, pm := range t.PaymentMethods {
			out.PaymentMethods[i] = PaymentMethod{
				Method: CanonicalMethod(pm.Method),
				Amount: pm.Amount,
			}
		}
	}
	return out
}

func (p Preset) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if !p.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}
