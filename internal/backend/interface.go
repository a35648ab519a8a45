// Package backend selects and wires the persistence layer at startup.
package backend

import (
	"context"

	"financeiro/internal/amqp"
	"financeiro/internal/config"
	"financeiro/internal/store"
)

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

type CleanupFunc func() error

// Result bundles the store with its optional AMQP client and the
// teardown for both. The AMQP client is nil for backends without a
// sync pipeline.
type Result struct {
	Store   store.Store
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates a persistence backend from the app configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg *config.Config) (*Result, error)
}
