// Package worker moves ledger writes from SQLite to the Google Sheets
// backup, driven by AMQP messages with a periodic catch-up sweep.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"financeiro/internal/amqp"
	"financeiro/internal/core"
	applog "financeiro/internal/log"
	"financeiro/internal/storage"
	"financeiro/internal/store"
)

// Storage is the sync-bookkeeping surface the worker needs from the
// SQLite repository.
type Storage interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetDeleted(ctx context.Context, id int64) (core.Transaction, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
	ResetSyncErrors(ctx context.Context) (int64, error)
}

type SyncWorker struct {
	storage   Storage
	exporter  store.TransactionExporter
	batchSize int
}

func NewSyncWorker(st Storage, exporter store.TransactionExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   st,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// Handlers wires the worker's message handlers into the AMQP consumer.
func (w *SyncWorker) Handlers(ctx context.Context) amqp.Handlers {
	return amqp.Handlers{
		Sync: func(msg *amqp.TransactionSyncMessage) error {
			return w.HandleSyncMessage(ctx, msg)
		},
		Delete: func(msg *amqp.TransactionDeleteMessage) error {
			return w.HandleDeleteMessage(ctx, msg)
		},
	}
}

// HandleSyncMessage exports one transaction and records the outcome on
// its row.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	tx, err := w.storage.GetTransaction(ctx, strconv.FormatInt(msg.ID, 10))
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.export(ctx, msg.ID, tx)
}

// HandleDeleteMessage removes the exported row for a deleted
// transaction. The row fields come from the message because the record
// is already soft-deleted locally; messages without the payload fall
// back to reading the soft-deleted row.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, skipping row removal", "id", msg.ID)
		return nil
	}

	var tx core.Transaction
	if msg.Description != "" {
		tx = core.Transaction{
			ID:          strconv.FormatInt(msg.ID, 10),
			Description: msg.Description,
			Amount:      core.Money{Cents: msg.AmountCents},
			Date:        parseMessageDate(msg.Date),
		}
	} else {
		loaded, err := w.storage.GetDeleted(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("load deleted transaction %d: %w", msg.ID, err)
		}
		tx = loaded
	}

	if err := w.exporter.RemoveExported(ctx, tx); err != nil {
		return fmt.Errorf("remove exported row: %w", err)
	}

	slog.InfoContext(ctx, "Removed exported row", "id", msg.ID)
	return nil
}

// ProcessPending exports transactions still marked pending. This is the
// catch-up path for writes whose publish was lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))
	w.processBatch(ctx, pending)
	return nil
}

// Resync moves errored rows back to pending and sweeps the whole
// backlog, batch by batch, until it drains. Rows that fail again leave
// the pending set as errors, so the sweep terminates.
func (w *SyncWorker) Resync(ctx context.Context) error {
	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, skipping resync")
		return nil
	}

	reset, err := w.storage.ResetSyncErrors(ctx)
	if err != nil {
		return fmt.Errorf("reset sync errors: %w", err)
	}
	if reset > 0 {
		slog.InfoContext(ctx, "Retrying errored transactions", "count", reset)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
		if err != nil {
			return fmt.Errorf("get pending transactions: %w", err)
		}
		if len(pending) == 0 {
			return nil
		}
		w.processBatch(ctx, pending)
	}
}

func (w *SyncWorker) processBatch(ctx context.Context, pending []storage.PendingSync) {
	for _, p := range pending {
		tx, err := w.storage.GetTransaction(ctx, strconv.FormatInt(p.ID, 10))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get pending transaction", "id", p.ID, "error", err)
			w.markError(ctx, p.ID)
			continue
		}
		if err := w.export(ctx, p.ID, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction", "id", p.ID, "error", err)
			continue
		}
	}
}

func (w *SyncWorker) export(ctx context.Context, id int64, tx core.Transaction) error {
	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, leaving transaction pending", "id", id)
		return nil
	}

	ref, err := w.exporter.ExportTransaction(ctx, tx)
	if err != nil {
		w.markError(ctx, id)
		return fmt.Errorf("export transaction: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", id,
		applog.FieldSheetsRef, ref)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, id int64) {
	if err := w.storage.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
	}
}

func parseMessageDate(s string) core.Date {
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &y, &m, &d); err != nil {
		return core.Date{}
	}
	return core.NewDate(y, m, d)
}
