// Package services orchestrates ledger operations across the store, the
// AMQP sync pipeline, and the report cache.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"financeiro/internal/amqp"
	"financeiro/internal/core"
	"financeiro/internal/store"
)

const dateLayout = "2006-01-02"

// SyncPublisher is the outbound side of the export pipeline. Publishing
// is best-effort: the store stays the source of truth and the worker
// catches up on anything a failed publish left behind.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
	PublishTransactionDelete(ctx context.Context, msg *amqp.TransactionDeleteMessage) error
}

// Invalidator is notified after every successful write so derived
// report data gets recomputed.
type Invalidator interface {
	Invalidate()
}

type TransactionService struct {
	store     store.Store
	publisher SyncPublisher
	reports   Invalidator
}

func NewTransactionService(st store.Store, publisher SyncPublisher, reports Invalidator) *TransactionService {
	return &TransactionService{
		store:     st,
		publisher: publisher,
		reports:   reports,
	}
}

// Create validates, normalizes and stores a new transaction, then queues
// it for export.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx = tx.Normalize()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.Append(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id
	s.invalidate()

	s.publishSync(ctx, parseNumericID(id), 1)
	return tx, nil
}

// Update replaces a stored transaction and queues a re-export.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx = tx.Normalize()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.Replace(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	s.invalidate()

	// Version 0 means "latest": the worker re-reads the row anyway.
	s.publishSync(ctx, parseNumericID(tx.ID), 0)
	return tx, nil
}

// Delete removes a transaction and queues the export-row removal. The
// row payload travels in the message because the record is gone from
// the listing afterwards.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	msg := amqp.NewTransactionDeleteMessage(
		parseNumericID(id), tx.Description, tx.Amount.Cents, tx.Date.Format(dateLayout))
	if err := s.publisher.PublishTransactionDelete(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *TransactionService) Presets(ctx context.Context) ([]core.Preset, error) {
	return s.store.ListPresets(ctx)
}

func (s *TransactionService) publishSync(ctx context.Context, id, version int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}

func (s *TransactionService) invalidate() {
	if s.reports != nil {
		s.reports.Invalidate()
	}
}

// parseNumericID tolerates the memory backend's non-numeric ids; the
// sync pipeline only runs against the SQL backends where ids are
// numeric.
func parseNumericID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
