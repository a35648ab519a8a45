// Command seed fills the configured backend with plausible ledger data
// for local development.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"financeiro/internal/backend"
	"financeiro/internal/config"
	"financeiro/internal/core"
	applog "financeiro/internal/log"
)

var incomeDescriptions = []string{
	"REVISÃO NA BOMBA DE DIREÇÃO",
	"TROCA DE CAIXA DE DIREÇÃO",
	"KIT DE VEDAÇÃO",
	"ALINHAMENTO E BALANCEAMENTO",
	"REPARO NO SETOR DE DIREÇÃO",
}

var expenseDescriptions = []string{
	"PEÇAS",
	"ÓLEO HIDRÁULICO",
	"FERRAMENTAS",
	"ALUGUEL",
	"ENERGIA",
	"MERCADO",
}

var methods = []string{
	core.MethodCash,
	core.MethodCard,
	core.MethodPix,
	core.MethodTransfer,
}

func main() {
	months := flag.Int("months", 6, "how many months back to fill")
	perMonth := flag.Int("per-month", 20, "transactions per month")
	seed := flag.Int64("seed", 0, "random seed (0 means random)")
	flag.Parse()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer result.Cleanup()

	now := time.Now().UTC()
	created := 0
	for m := 0; m < *months; m++ {
		month := now.AddDate(0, -m, 0)
		for i := 0; i < *perMonth; i++ {
			tx := randomTransaction(month)
			if _, err := result.Store.Append(ctx, tx); err != nil {
				logger.Error("Failed to append transaction", "error", err, "description", tx.Description)
				os.Exit(1)
			}
			created++
		}
	}

	logger.Info("Seed complete", "transactions", created, "backend", cfg.DataBackend)
}

func randomTransaction(month time.Time) core.Transaction {
	day := gofakeit.Number(1, 28)
	date := core.NewDate(month.Year(), int(month.Month()), day)

	if gofakeit.Bool() {
		cents := int64(gofakeit.Number(5000, 250000))
		tx := core.Transaction{
			Description: gofakeit.RandomString(incomeDescriptions),
			Amount:      core.Money{Cents: cents},
			Type:        core.Income,
			Date:        date,
		}
		// Split across one or two payment methods.
		if gofakeit.Bool() {
			first := cents * int64(gofakeit.Number(30, 70)) / 100
			tx.PaymentMethods = []core.PaymentMethod{
				{Method: gofakeit.RandomString(methods), Amount: core.Money{Cents: first}},
				{Method: gofakeit.RandomString(methods), Amount: core.Money{Cents: cents - first}},
			}
		} else {
			tx.PaymentMethods = []core.PaymentMethod{
				{Method: gofakeit.RandomString(methods), Amount: core.Money{Cents: cents}},
			}
		}
		return tx
	}

	return core.Transaction{
		Description: gofakeit.RandomString(expenseDescriptions),
		Amount:      core.Money{Cents: int64(gofakeit.Number(1000, 80000))},
		Type:        core.Expense,
		Date:        date,
	}
}
