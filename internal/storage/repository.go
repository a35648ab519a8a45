package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"financeiro/internal/core"
	"financeiro/internal/store"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Sync status values for the export worker.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements store.TransactionWriter.
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	res, err := dbtx.ExecContext(ctx,
		`INSERT INTO transactions (description, amount_cents, type, tx_date) VALUES (?, ?, ?, ?)`,
		tx.Description, tx.Amount.Cents, string(tx.Type), tx.Date.Format(dateLayout))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	if err := insertPaymentMethods(ctx, dbtx, id, tx.PaymentMethods); err != nil {
		return "", err
	}

	if err := dbtx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents,
		"type", tx.Type,
		"date", tx.Date.Format(dateLayout))

	return strconv.FormatInt(id, 10), nil
}

// Replace implements store.TransactionReplacer. The record is overwritten in
// full and its version bumped so the export worker re-syncs the row.
func (r *SQLiteRepository) Replace(ctx context.Context, tx core.Transaction) error {
	id, err := parseID(tx.ID)
	if err != nil {
		return err
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	res, err := dbtx.ExecContext(ctx,
		`UPDATE transactions
		    SET description = ?, amount_cents = ?, type = ?, tx_date = ?,
		        version = version + 1, sync_status = ?
		  WHERE id = ? AND deleted = 0`,
		tx.Description, tx.Amount.Cents, string(tx.Type), tx.Date.Format(dateLayout),
		SyncPending, id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	if _, err := dbtx.ExecContext(ctx,
		`DELETE FROM payment_methods WHERE transaction_id = ?`, id); err != nil {
		return fmt.Errorf("clear payment methods: %w", err)
	}
	if err := insertPaymentMethods(ctx, dbtx, id, tx.PaymentMethods); err != nil {
		return err
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete implements store.TransactionDeleter. Records are soft-deleted so the
// export worker can still locate and remove the backup row.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	numID, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted = 1 WHERE id = ? AND deleted = 0`, numID)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListTransactions implements store.TransactionLister.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, type, tx_date
		   FROM transactions WHERE deleted = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs, index, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachPaymentMethods(ctx, txs, index); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetTransaction implements store.TransactionLister.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	numID, err := parseID(id)
	if err != nil {
		return core.Transaction{}, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, type, tx_date
		   FROM transactions WHERE id = ? AND deleted = 0`, numID)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, store.ErrNotFound
		}
		return core.Transaction{}, err
	}

	txs := []core.Transaction{tx}
	if err := r.attachPaymentMethods(ctx, txs, map[int64]int{numID: 0}); err != nil {
		return core.Transaction{}, err
	}
	return txs[0], nil
}

func (r *SQLiteRepository) ListPresets(ctx context.Context) ([]core.Preset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, type FROM presets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query presets: %w", err)
	}
	defer rows.Close()

	var out []core.Preset
	for rows.Next() {
		var id int64
		var p core.Preset
		var typ string
		if err := rows.Scan(&id, &p.Description, &typ); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		p.ID = strconv.FormatInt(id, 10)
		p.Type = core.TransactionType(typ)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AppendServiceOrder(ctx context.Context, content string) (string, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO service_orders (content) VALUES (?)`, content)
	if err != nil {
		return "", fmt.Errorf("insert service order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *SQLiteRepository) ListServiceOrders(ctx context.Context, limit int) ([]store.ServiceOrder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, created_at FROM service_orders ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query service orders: %w", err)
	}
	defer rows.Close()

	var out []store.ServiceOrder
	for rows.Next() {
		var id int64
		var o store.ServiceOrder
		var createdAt time.Time
		if err := rows.Scan(&id, &o.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan service order: %w", err)
		}
		o.ID = strconv.FormatInt(id, 10)
		o.CreatedAt = createdAt.Unix()
		out = append(out, o)
	}
	return out, rows.Err()
}

// PendingSync is the minimal record the worker needs for one sync message.
type PendingSync struct {
	ID      int64
	Version int64
}

// GetPendingSync returns transactions that still need exporting.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version FROM transactions
		  WHERE sync_status = ? AND deleted = 0 ORDER BY id LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending sync: %w", err)
	}
	defer rows.Close()

	var out []PendingSync
	for rows.Next() {
		var p PendingSync
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records a successful export.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncDone, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError records a failed export for later retry.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

// ResetSyncErrors moves error rows back to pending so the next sweep
// picks them up again. Returns the number of rows reset.
func (r *SQLiteRepository) ResetSyncErrors(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE sync_status = ? AND deleted = 0`,
		SyncPending, SyncError)
	if err != nil {
		return 0, fmt.Errorf("reset sync errors: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset sync errors: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Reset errored transactions for resync", "count", n)
	}
	return n, nil
}

// GetDeleted returns a soft-deleted record so the worker can remove its
// exported row. Returns store.ErrNotFound for live or unknown ids.
func (r *SQLiteRepository) GetDeleted(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, type, tx_date
		   FROM transactions WHERE id = ? AND deleted = 1`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, store.ErrNotFound
		}
		return core.Transaction{}, err
	}
	return tx, nil
}

func insertPaymentMethods(ctx context.Context, dbtx *sql.Tx, txID int64, methods []core.PaymentMethod) error {
	for i, pm := range methods {
		if _, err := dbtx.ExecContext(ctx,
			`INSERT INTO payment_methods (transaction_id, position, method, amount_cents) VALUES (?, ?, ?, ?)`,
			txID, i, pm.Method, pm.Amount.Cents); err != nil {
			return fmt.Errorf("insert payment method: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) attachPaymentMethods(ctx context.Context, txs []core.Transaction, index map[int64]int) error {
	if len(txs) == 0 {
		return nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT pm.transaction_id, pm.method, pm.amount_cents
		   FROM payment_methods pm
		   JOIN transactions t ON t.id = pm.transaction_id
		  WHERE t.deleted = 0
		  ORDER BY pm.transaction_id, pm.position`)
	if err != nil {
		return fmt.Errorf("query payment methods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID, cents int64
		var method string
		if err := rows.Scan(&txID, &method, &cents); err != nil {
			return fmt.Errorf("scan payment method: %w", err)
		}
		i, ok := index[txID]
		if !ok {
			continue
		}
		txs[i].PaymentMethods = append(txs[i].PaymentMethods, core.PaymentMethod{
			Method: method,
			Amount: core.Money{Cents: cents},
		})
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var id, cents int64
	var tx core.Transaction
	var typ, dateStr string
	if err := row.Scan(&id, &tx.Description, &cents, &typ, &dateStr); err != nil {
		return core.Transaction{}, err
	}
	d, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	tx.ID = strconv.FormatInt(id, 10)
	tx.Amount = core.Money{Cents: cents}
	tx.Type = core.TransactionType(typ)
	tx.Date = core.DateOf(d)
	return tx, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, map[int64]int, error) {
	var txs []core.Transaction
	index := make(map[int64]int)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scan transaction: %w", err)
		}
		numID, _ := strconv.ParseInt(tx.ID, 10, 64)
		index[numID] = len(txs)
		txs = append(txs, tx)
	}
	return txs, index, rows.Err()
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", store.ErrNotFound, id)
	}
	return n, nil
}
