package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"financeiro/internal/cache"
	"financeiro/internal/core"
	"financeiro/internal/store"
)

// MonthlyReport is the full monthly view: the summary plus the carried
// cash balance.
type MonthlyReport struct {
	Summary core.MonthlySummary
	Carried core.CarriedBalance
}

// ReportService computes reports from a store snapshot and memoizes
// them until the next write.
type ReportService struct {
	lister  store.TransactionLister
	monthly *cache.LRUCache[MonthlyReport]
	annual  *cache.LRUCache[[]core.MonthTotals]
	months  *cache.LRUCache[[]core.YearMonth]
}

func NewReportService(lister store.TransactionLister) *ReportService {
	return &ReportService{
		lister:  lister,
		monthly: cache.NewLRUCache[MonthlyReport](24, 5*time.Minute),
		annual:  cache.NewLRUCache[[]core.MonthTotals](4, 5*time.Minute),
		months:  cache.NewLRUCache[[]core.YearMonth](1, 5*time.Minute),
	}
}

// RegisterCaches adds the report caches to the manager's expiry sweep.
func (s *ReportService) RegisterCaches(m *cache.Manager) {
	m.Register(s.monthly)
	m.Register(s.annual)
	m.Register(s.months)
}

// Monthly returns the report for one calendar month.
func (s *ReportService) Monthly(ctx context.Context, ym core.YearMonth) (MonthlyReport, error) {
	key := ym.String()
	if report, ok := s.monthly.Get(key); ok {
		return report, nil
	}

	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("list transactions: %w", err)
	}

	report := MonthlyReport{
		Summary: core.ComputeMonthlySummary(txs, ym),
		Carried: core.ComputeCarriedBalance(txs, ym),
	}
	s.monthly.Set(key, report)
	return report, nil
}

// Annual returns the twelve-month totals for one year.
func (s *ReportService) Annual(ctx context.Context, year int) ([]core.MonthTotals, error) {
	key := strconv.Itoa(year)
	if totals, ok := s.annual.Get(key); ok {
		return totals, nil
	}

	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totals := core.ComputeAnnualSummary(txs, year)
	s.annual.Set(key, totals)
	return totals, nil
}

// Months lists the distinct months with data, most recent first.
func (s *ReportService) Months(ctx context.Context) ([]core.YearMonth, error) {
	if months, ok := s.months.Get("all"); ok {
		return months, nil
	}

	txs, err := s.lister.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	months := core.AvailableMonths(txs)
	s.months.Set("all", months)
	return months, nil
}

// Invalidate drops every memoized report. Called after ledger writes.
func (s *ReportService) Invalidate() {
	s.monthly.Clear()
	s.annual.Clear()
	s.months.Clear()
}
