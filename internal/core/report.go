package core

import (
	"fmt"
	"sort"
	"time"
)

// YearMonth identifies a calendar month ("2006-01"). Comparisons and the
// previous-month rollover are timezone-free integer arithmetic so they cannot
// drift the way Date-based math can.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses the "2006-01" form used by the report endpoints.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year-month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// YearMonthOf returns the calendar month a date falls in, in UTC.
func YearMonthOf(d Date) YearMonth {
	return YearMonth{Year: d.Year(), Month: time.Month(d.Month())}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Prev returns the previous calendar month, rolling January back to December
// of the prior year.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Contains reports whether the date's UTC day falls inside the month.
func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && time.Month(d.Month()) == ym.Month
}

// Before orders months chronologically.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// MonthlySummary is the derived report for one calendar month. It is computed
// on demand from a snapshot and never persisted.
type MonthlySummary struct {
	Month               YearMonth
	IncomeTransactions  []Transaction
	ExpenseTransactions []Transaction
	TotalIncome         Money
	TotalExpense        Money
	PaymentMethodTotals map[string]Money
	CashIncome          Money
}

// CarriedBalance combines the previous month's net cash position with the
// current month's cash income and total expense.
//
// The lookback is one level only: the previous month's balance is computed
// from that month's own transactions and does NOT include anything carried
// into it from earlier months. That matches the observed behavior of the
// system this replaces; product review pending before changing it.
type CarriedBalance struct {
	Month               YearMonth
	PrevMonth           YearMonth
	PrevMonthCashIncome Money
	PrevMonthExpense    Money
	PrevMonthBalance    Money // cash income minus expense, may be negative
	CashIncome          Money
	TotalExpense        Money
	CurrentBalance      Money
}

// MonthTotals is one bar of the twelve-month annual chart.
type MonthTotals struct {
	Month   time.Month
	Income  Money
	Expense Money
}

// ComputeMonthlySummary filters the snapshot to the given month, partitions by
// type, and accumulates totals. Pure: the input slice is never reordered or
// mutated, and empty input yields an all-zero summary.
func ComputeMonthlySummary(txs []Transaction, ym YearMonth) MonthlySummary {
	out := MonthlySummary{
		Month:               ym,
		IncomeTransactions:  []Transaction{},
		ExpenseTransactions: []Transaction{},
		PaymentMethodTotals: map[string]Money{},
	}

	for _, tx := range txs {
		if !ym.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case Income:
			out.IncomeTransactions = append(out.IncomeTransactions, tx)
			out.TotalIncome.Cents += tx.Amount.Cents
		case Expense:
			out.ExpenseTransactions = append(out.ExpenseTransactions, tx)
			out.TotalExpense.Cents += tx.Amount.Cents
		}
	}

	// Descending by date; stable so same-day records keep snapshot order.
	sortByDateDesc(out.IncomeTransactions)
	sortByDateDesc(out.ExpenseTransactions)

	// Labels are keyed exactly as stored; one income transaction may
	// contribute to several labels.
	for _, tx := range out.IncomeTransactions {
		for _, pm := range tx.PaymentMethods {
			total := out.PaymentMethodTotals[pm.Method]
			total.Cents += pm.Amount.Cents
			out.PaymentMethodTotals[pm.Method] = total
		}
	}
	out.CashIncome = out.PaymentMethodTotals[MethodCash]

	return out
}

// ComputeCarriedBalance derives the running cash balance for a month from the
// previous month's summary and the current month's summary.
func ComputeCarriedBalance(txs []Transaction, ym YearMonth) CarriedBalance {
	prev := ym.Prev()
	prevSummary := ComputeMonthlySummary(txs, prev)
	current := ComputeMonthlySummary(txs, ym)

	prevBalance := prevSummary.CashIncome.Cents - prevSummary.TotalExpense.Cents

	return CarriedBalance{
		Month:               ym,
		PrevMonth:           prev,
		PrevMonthCashIncome: prevSummary.CashIncome,
		PrevMonthExpense:    prevSummary.TotalExpense,
		PrevMonthBalance:    Money{Cents: prevBalance},
		CashIncome:          current.CashIncome,
		TotalExpense:        current.TotalExpense,
		CurrentBalance:      Money{Cents: prevBalance + current.CashIncome.Cents - current.TotalExpense.Cents},
	}
}

// ComputeAnnualSummary accumulates income and expense totals per month of the
// given year, January through December. Transactions outside the year are
// excluded entirely; there is no cross-year carry.
func ComputeAnnualSummary(txs []Transaction, year int) []MonthTotals {
	out := make([]MonthTotals, 12)
	for i := range out {
		out[i].Month = time.Month(i + 1)
	}
	for _, tx := range txs {
		if tx.Date.Year() != year {
			continue
		}
		idx := tx.Date.Month() - 1
		switch tx.Type {
		case Income:
			out[idx].Income.Cents += tx.Amount.Cents
		case Expense:
			out[idx].Expense.Cents += tx.Amount.Cents
		}
	}
	return out
}

// AvailableMonths returns the distinct months present in the snapshot, most
// recent first.
func AvailableMonths(txs []Transaction) []YearMonth {
	seen := make(map[YearMonth]struct{}, len(txs))
	out := make([]YearMonth, 0, len(txs))
	for _, tx := range txs {
		ym := YearMonthOf(tx.Date)
		if _, ok := seen[ym]; ok {
			continue
		}
		seen[ym] = struct{}{}
		out = append(out, ym)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	return out
}

func sortByDateDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Time.After(txs[j].Date.Time)
	})
}
