// Package postgres provides a PostgreSQL-backed implementation of the store
// ports for shared deployments where a local SQLite file is not enough.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"financeiro/internal/core"
	"financeiro/internal/store"
)

const dateLayout = "2006-01-02"

type Repository struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Repository)(nil)

func NewRepository(ctx context.Context, connString string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &Repository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			description TEXT NOT NULL,
			amount_cents BIGINT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
			tx_date DATE NOT NULL,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payment_methods (
			transaction_id BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
			position INT NOT NULL,
			method TEXT NOT NULL,
			amount_cents BIGINT NOT NULL,
			PRIMARY KEY (transaction_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS presets (
			id BIGSERIAL PRIMARY KEY,
			description TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('income', 'expense'))
		)`,
		`CREATE TABLE IF NOT EXISTS service_orders (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(tx_date)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *Repository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	dbtx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	var id int64
	err = dbtx.QueryRow(ctx,
		`INSERT INTO transactions (description, amount_cents, type, tx_date)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		tx.Description, tx.Amount.Cents, string(tx.Type), tx.Date.Format(dateLayout)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	for i, pm := range tx.PaymentMethods {
		if _, err := dbtx.Exec(ctx,
			`INSERT INTO payment_methods (transaction_id, position, method, amount_cents)
			 VALUES ($1, $2, $3, $4)`,
			id, i, pm.Method, pm.Amount.Cents); err != nil {
			return "", fmt.Errorf("insert payment method: %w", err)
		}
	}

	if err := dbtx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *Repository) Replace(ctx context.Context, tx core.Transaction) error {
	id, err := parseID(tx.ID)
	if err != nil {
		return err
	}

	dbtx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	tag, err := dbtx.Exec(ctx,
		`UPDATE transactions
		    SET description = $1, amount_cents = $2, type = $3, tx_date = $4
		  WHERE id = $5 AND NOT deleted`,
		tx.Description, tx.Amount.Cents, string(tx.Type), tx.Date.Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	if _, err := dbtx.Exec(ctx,
		`DELETE FROM payment_methods WHERE transaction_id = $1`, id); err != nil {
		return fmt.Errorf("clear payment methods: %w", err)
	}
	for i, pm := range tx.PaymentMethods {
		if _, err := dbtx.Exec(ctx,
			`INSERT INTO payment_methods (transaction_id, position, method, amount_cents)
			 VALUES ($1, $2, $3, $4)`,
			id, i, pm.Method, pm.Amount.Cents); err != nil {
			return fmt.Errorf("insert payment method: %w", err)
		}
	}

	if err := dbtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	numID, err := parseID(id)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET deleted = TRUE WHERE id = $1 AND NOT deleted`, numID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, description, amount_cents, type, tx_date
		   FROM transactions WHERE NOT deleted ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	index := make(map[int64]int)
	for rows.Next() {
		tx, numID, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		index[numID] = len(txs)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachPaymentMethods(ctx, txs, index); err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	numID, err := parseID(id)
	if err != nil {
		return core.Transaction{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, description, amount_cents, type, tx_date
		   FROM transactions WHERE id = $1 AND NOT deleted`, numID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("query transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.Transaction{}, err
		}
		return core.Transaction{}, store.ErrNotFound
	}
	tx, _, err := scanTransaction(rows)
	if err != nil {
		return core.Transaction{}, err
	}
	rows.Close()

	txs := []core.Transaction{tx}
	if err := r.attachPaymentMethods(ctx, txs, map[int64]int{numID: 0}); err != nil {
		return core.Transaction{}, err
	}
	return txs[0], nil
}

func (r *Repository) attachPaymentMethods(ctx context.Context, txs []core.Transaction, index map[int64]int) error {
	if len(txs) == 0 {
		return nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT pm.transaction_id, pm.method, pm.amount_cents
		   FROM payment_methods pm
		   JOIN transactions t ON t.id = pm.transaction_id
		  WHERE NOT t.deleted
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

func (r *Repository) ListPresets(ctx context.Context) ([]core.Preset, error) {
	rows, err := r.pool.Query(ctx,
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

func (r *Repository) AppendServiceOrder(ctx context.Context, content string) (string, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO service_orders (content) VALUES ($1) RETURNING id`, content).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert service order: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *Repository) ListServiceOrders(ctx context.Context, limit int) ([]store.ServiceOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, content, created_at FROM service_orders ORDER BY id DESC LIMIT $1`, limit)
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

func scanTransaction(rows pgx.Rows) (core.Transaction, int64, error) {
	var id, cents int64
	var tx core.Transaction
	var typ string
	var date time.Time
	if err := rows.Scan(&id, &tx.Description, &cents, &typ, &date); err != nil {
		return core.Transaction{}, 0, fmt.Errorf("scan transaction: %w", err)
	}
	tx.ID = strconv.FormatInt(id, 10)
	tx.Amount = core.Money{Cents: cents}
	tx.Type = core.TransactionType(typ)
	tx.Date = core.DateOf(date)
	return tx, id, nil
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", store.ErrNotFound, id)
	}
	return n, nil
}
