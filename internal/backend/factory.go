package backend

import (
	"context"
	"fmt"
	"log/slog"

	"financeiro/internal/amqp"
	"financeiro/internal/config"
	"financeiro/internal/postgres"
	"financeiro/internal/storage"
	"financeiro/internal/store/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg *config.Config) (*Result, error) {
	backendType := BackendType(cfg.DataBackend)
	switch backendType {
	case MemoryBackend:
		return f.createMemoryBackend()
	case SQLiteBackend:
		return f.createSQLiteBackend(cfg)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Using in-memory backend, data is not persisted")
	return &Result{
		Store:   memory.NewWithDefaults(),
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	amqpClient := f.connectAMQP(cfg)

	cleanup := func() error {
		var firstErr error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				firstErr = fmt.Errorf("close AMQP client: %w", err)
			}
		}
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close SQLite repository: %w", err)
		}
		return firstErr
	}

	f.logger.Info("Using SQLite backend", "path", cfg.SQLiteDBPath)
	return &Result{Store: repo, AMQP: amqpClient, Cleanup: cleanup}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, cfg *config.Config) (*Result, error) {
	repo, err := postgres.NewRepository(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("initialize postgres repository: %w", err)
	}

	amqpClient := f.connectAMQP(cfg)

	cleanup := func() error {
		var firstErr error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				firstErr = fmt.Errorf("close AMQP client: %w", err)
			}
		}
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close postgres repository: %w", err)
		}
		return firstErr
	}

	f.logger.Info("Using PostgreSQL backend")
	return &Result{Store: repo, AMQP: amqpClient, Cleanup: cleanup}, nil
}

// connectAMQP is best-effort: the API keeps working without the sync
// pipeline, the worker catches up from sync_status later.
func (f *DefaultFactory) connectAMQP(cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}
