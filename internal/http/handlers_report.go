package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"financeiro/internal/core"
)

type monthlyReportResponse struct {
	Month               string                 `json:"month"`
	TotalIncomeCents    int64                  `json:"total_income_cents"`
	TotalExpenseCents   int64                  `json:"total_expense_cents"`
	PaymentMethodTotals map[string]int64       `json:"payment_method_totals"`
	CashIncomeCents     int64                  `json:"cash_income_cents"`
	Carried             carriedBalanceResponse `json:"carried_balance"`
	Income              []transactionResponse  `json:"income"`
	Expenses            []transactionResponse  `json:"expenses"`
}

type carriedBalanceResponse struct {
	PrevMonth             string `json:"prev_month"`
	PrevMonthBalanceCents int64  `json:"prev_month_balance_cents"`
	CurrentBalanceCents   int64  `json:"current_balance_cents"`
	CurrentBalance        string `json:"current_balance"`
}

type monthTotalsResponse struct {
	Month        int   `json:"month"`
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
}

// handleMonthlyReport serves GET /reports/monthly?month=2006-01. The
// current month is the default.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	ym := core.YearMonth{Year: time.Now().UTC().Year(), Month: time.Now().UTC().Month()}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		parsed, err := core.ParseYearMonth(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ym = parsed
	}

	report, err := s.reports.Monthly(r.Context(), ym)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	methodTotals := make(map[string]int64, len(report.Summary.PaymentMethodTotals))
	for method, total := range report.Summary.PaymentMethodTotals {
		methodTotals[method] = total.Cents
	}

	writeJSON(w, http.StatusOK, monthlyReportResponse{
		Month:               ym.String(),
		TotalIncomeCents:    report.Summary.TotalIncome.Cents,
		TotalExpenseCents:   report.Summary.TotalExpense.Cents,
		PaymentMethodTotals: methodTotals,
		CashIncomeCents:     report.Summary.CashIncome.Cents,
		Carried: carriedBalanceResponse{
			PrevMonth:             report.Carried.PrevMonth.String(),
			PrevMonthBalanceCents: report.Carried.PrevMonthBalance.Cents,
			CurrentBalanceCents:   report.Carried.CurrentBalance.Cents,
			CurrentBalance:        core.FormatBRL(report.Carried.CurrentBalance.Cents),
		},
		Income:   toTransactionResponses(report.Summary.IncomeTransactions),
		Expenses: toTransactionResponses(report.Summary.ExpenseTransactions),
	})
}

// handleAnnualReport serves GET /reports/annual?year=2006.
func (s *Server) handleAnnualReport(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}

	totals, err := s.reports.Annual(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]monthTotalsResponse, len(totals))
	for i, mt := range totals {
		out[i] = monthTotalsResponse{
			Month:        int(mt.Month),
			IncomeCents:  mt.Income.Cents,
			ExpenseCents: mt.Expense.Cents,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"months": out,
	})
}

// handleAvailableMonths serves GET /reports/months.
func (s *Server) handleAvailableMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.reports.Months(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]string, len(months))
	for i, ym := range months {
		out[i] = ym.String()
	}
	writeJSON(w, http.StatusOK, out)
}
