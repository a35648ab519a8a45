package store

import (
	"context"
	"errors"

	"financeiro/internal/core"
)

// ErrNotFound is returned when an id does not resolve to a stored record.
var ErrNotFound = errors.New("record not found")

// Ports for the persistence and export adapters.
type (
	TransactionWriter interface {
		// Append stores a new transaction and returns its assigned id.
		Append(ctx context.Context, tx core.Transaction) (id string, err error)
	}

	TransactionReplacer interface {
		// Replace overwrites the full record identified by tx.ID.
		Replace(ctx context.Context, tx core.Transaction) error
	}

	TransactionDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	// TransactionLister supplies the snapshot the aggregator reads. The
	// returned slice is owned by the caller.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	}

	PresetReader interface {
		ListPresets(ctx context.Context) ([]core.Preset, error)
	}

	// ServiceOrderStore keeps the recent history of generated service orders.
	ServiceOrderStore interface {
		AppendServiceOrder(ctx context.Context, content string) (id string, err error)
		ListServiceOrders(ctx context.Context, limit int) ([]ServiceOrder, error)
	}

	// TransactionExporter is the outbound backup boundary (Google Sheets).
	TransactionExporter interface {
		ExportTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
		RemoveExported(ctx context.Context, tx core.Transaction) error
	}
)

// ServiceOrder is one generated document in the history.
type ServiceOrder struct {
	ID        string
	Content   string
	CreatedAt int64 // unix seconds
}

// Store is the unified surface the HTTP layer and services depend on.
type Store interface {
	TransactionWriter
	TransactionReplacer
	TransactionDeleter
	TransactionLister
	PresetReader
	ServiceOrderStore
}
