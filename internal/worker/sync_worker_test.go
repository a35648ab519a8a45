package worker

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"financeiro/internal/amqp"
	"financeiro/internal/core"
	"financeiro/internal/storage"
	"financeiro/internal/store"
)

type syncRow struct {
	tx     core.Transaction
	status string
}

type fakeStorage struct {
	rows    map[int64]*syncRow
	deleted map[int64]core.Transaction
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		rows:    make(map[int64]*syncRow),
		deleted: make(map[int64]core.Transaction),
	}
}

func (f *fakeStorage) add(id int64, tx core.Transaction) {
	tx.ID = strconv.FormatInt(id, 10)
	f.rows[id] = &syncRow{tx: tx, status: storage.SyncPending}
}

func (f *fakeStorage) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return core.Transaction{}, store.ErrNotFound
	}
	row, ok := f.rows[n]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	return row.tx, nil
}

func (f *fakeStorage) GetDeleted(ctx context.Context, id int64) (core.Transaction, error) {
	tx, ok := f.deleted[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

func (f *fakeStorage) GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error) {
	var out []storage.PendingSync
	for id, row := range f.rows {
		if row.status != storage.SyncPending {
			continue
		}
		out = append(out, storage.PendingSync{ID: id, Version: 1})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStorage) MarkSynced(ctx context.Context, id int64) error {
	f.rows[id].status = storage.SyncDone
	return nil
}

func (f *fakeStorage) MarkSyncError(ctx context.Context, id int64) error {
	f.rows[id].status = storage.SyncError
	return nil
}

func (f *fakeStorage) ResetSyncErrors(ctx context.Context) (int64, error) {
	var n int64
	for _, row := range f.rows {
		if row.status == storage.SyncError {
			row.status = storage.SyncPending
			n++
		}
	}
	return n, nil
}

type fakeExporter struct {
	exported  []core.Transaction
	removed   []core.Transaction
	failUntil int // export attempts that fail before the first success
	attempts  int
}

func (f *fakeExporter) ExportTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	f.attempts++
	if f.attempts <= f.failUntil {
		return "", errors.New("sheets unavailable")
	}
	f.exported = append(f.exported, tx)
	return "Sheet!A2:E2", nil
}

func (f *fakeExporter) RemoveExported(ctx context.Context, tx core.Transaction) error {
	f.removed = append(f.removed, tx)
	return nil
}

func expenseTx(desc string, cents int64) core.Transaction {
	return core.Transaction{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Type:        core.Expense,
		Date:        core.NewDate(2025, 3, 10),
	}
}

func TestResync_RetriesErroredRows(t *testing.T) {
	st := newFakeStorage()
	st.add(1, expenseTx("PEÇAS", 25000))
	exporter := &fakeExporter{failUntil: 1}
	w := NewSyncWorker(st, exporter, 10)

	ctx := context.Background()

	// First sweep fails the export and parks the row on error.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if got := st.rows[1].status; got != storage.SyncError {
		t.Fatalf("status after failed export = %q, want %q", got, storage.SyncError)
	}

	// Pending-only sweeps must not touch error rows.
	for i := 0; i < 3; i++ {
		if err := w.ProcessPending(ctx); err != nil {
			t.Fatalf("ProcessPending() error = %v", err)
		}
	}
	if exporter.attempts != 1 {
		t.Fatalf("pending sweeps retried an error row: attempts = %d, want 1", exporter.attempts)
	}

	// The full resync resets the row and exports it.
	if err := w.Resync(ctx); err != nil {
		t.Fatalf("Resync() error = %v", err)
	}
	if got := st.rows[1].status; got != storage.SyncDone {
		t.Errorf("status after resync = %q, want %q", got, storage.SyncDone)
	}
	if len(exporter.exported) != 1 || exporter.exported[0].Description != "PEÇAS" {
		t.Errorf("exported = %+v, want one PEÇAS row", exporter.exported)
	}
}

func TestResync_DrainsBacklogAcrossBatches(t *testing.T) {
	st := newFakeStorage()
	for i := int64(1); i <= 5; i++ {
		st.add(i, expenseTx("ÓLEO HIDRÁULICO", 3000*i))
	}
	exporter := &fakeExporter{}
	w := NewSyncWorker(st, exporter, 2)

	if err := w.Resync(context.Background()); err != nil {
		t.Fatalf("Resync() error = %v", err)
	}
	if len(exporter.exported) != 5 {
		t.Errorf("exported %d rows, want 5", len(exporter.exported))
	}
	for id, row := range st.rows {
		if row.status != storage.SyncDone {
			t.Errorf("row %d status = %q, want %q", id, row.status, storage.SyncDone)
		}
	}
}

func TestResync_LeavesRepeatedFailuresOnError(t *testing.T) {
	st := newFakeStorage()
	st.add(1, expenseTx("RETÍFICA", 40000))
	exporter := &fakeExporter{failUntil: 100}
	w := NewSyncWorker(st, exporter, 10)

	if err := w.Resync(context.Background()); err != nil {
		t.Fatalf("Resync() error = %v", err)
	}
	if got := st.rows[1].status; got != storage.SyncError {
		t.Errorf("status = %q, want %q", got, storage.SyncError)
	}
	if exporter.attempts != 1 {
		t.Errorf("attempts = %d, want 1 per resync", exporter.attempts)
	}
}

func TestHandleDeleteMessage_PayloadRow(t *testing.T) {
	st := newFakeStorage()
	exporter := &fakeExporter{}
	w := NewSyncWorker(st, exporter, 10)

	msg := amqp.NewTransactionDeleteMessage(7, "REVISÃO BOMBA", 50000, "2025-03-10")
	if err := w.HandleDeleteMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleDeleteMessage() error = %v", err)
	}
	if len(exporter.removed) != 1 {
		t.Fatalf("removed %d rows, want 1", len(exporter.removed))
	}
	got := exporter.removed[0]
	if got.Description != "REVISÃO BOMBA" || got.Amount.Cents != 50000 {
		t.Errorf("removed row = %+v", got)
	}
}

func TestHandleDeleteMessage_FallsBackToDeletedRow(t *testing.T) {
	st := newFakeStorage()
	st.deleted[7] = core.Transaction{
		ID:          "7",
		Description: "SERVIÇO BOMBA",
		Amount:      core.Money{Cents: 100000},
		Date:        core.NewDate(2025, 3, 5),
	}
	exporter := &fakeExporter{}
	w := NewSyncWorker(st, exporter, 10)

	msg := &amqp.TransactionDeleteMessage{ID: 7}
	if err := w.HandleDeleteMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleDeleteMessage() error = %v", err)
	}
	if len(exporter.removed) != 1 {
		t.Fatalf("removed %d rows, want 1", len(exporter.removed))
	}
	if got := exporter.removed[0].Description; got != "SERVIÇO BOMBA" {
		t.Errorf("removed row description = %q, want loaded from storage", got)
	}
}

func TestHandleDeleteMessage_UnknownDeletedRow(t *testing.T) {
	st := newFakeStorage()
	w := NewSyncWorker(st, &fakeExporter{}, 10)

	msg := &amqp.TransactionDeleteMessage{ID: 99}
	err := w.HandleDeleteMessage(context.Background(), msg)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want store.ErrNotFound", err)
	}
}
