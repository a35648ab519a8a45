package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"financeiro/internal/core"
	"financeiro/internal/store"
)

// Store is the in-memory reference implementation of the persistence ports.
// It is the default backend for local development and the fixture for tests.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	txs     []core.Transaction
	presets []core.Preset
	orders  []store.ServiceOrder
}

var _ store.Store = (*Store)(nil)

func New(presets []core.Preset) *Store {
	return &Store{nextID: 1, presets: append([]core.Preset(nil), presets...)}
}

// NewWithDefaults seeds the preset list the entry forms expect.
func NewWithDefaults() *Store {
	return New([]core.Preset{
		{ID: "p1", Description: "REVISÃO NA BOMBA DE DIREÇÃO", Type: core.Income},
		{ID: "p2", Description: "TROCA DE ÓLEO HIDRÁULICO", Type: core.Income},
		{ID: "p3", Description: "MERCADO", Type: core.Expense},
		{ID: "p4", Description: "COMBUSTÍVEL", Type: core.Expense},
		{ID: "p5", Description: "MOTO BOY", Type: core.Expense},
	})
}

func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = "mem:" + strconv.FormatInt(s.nextID, 10)
	s.nextID++
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}

func (s *Store) Replace(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == tx.ID {
			s.txs[i] = tx
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// ListTransactions returns a copy of the current snapshot.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, store.ErrNotFound
}

func (s *Store) ListPresets(_ context.Context) ([]core.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Preset, len(s.presets))
	copy(out, s.presets)
	return out, nil
}

func (s *Store) AppendServiceOrder(_ context.Context, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := "so:" + strconv.FormatInt(s.nextID, 10)
	s.nextID++
	s.orders = append(s.orders, store.ServiceOrder{
		ID:        id,
		Content:   content,
		CreatedAt: time.Now().Unix(),
	})
	return id, nil
}

// ListServiceOrders returns the most recent orders first, at most limit.
// Insertion order is creation order, so reversing it is enough even when
// several orders share a timestamp.
func (s *Store) ListServiceOrders(_ context.Context, limit int) ([]store.ServiceOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.ServiceOrder, 0, len(s.orders))
	for i := len(s.orders) - 1; i >= 0; i-- {
		out = append(out, s.orders[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
