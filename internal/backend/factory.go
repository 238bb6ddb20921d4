package backend

import (
	"context"
	"fmt"
	"log/slog"

	"famledger/internal/catalog"
	"famledger/internal/ledger/memory"
	"famledger/internal/storage"
	"famledger/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case PostgresBackend:
		res, err = f.createPostgresBackend(ctx, config)
	case MemoryBackend:
		res = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	res.Catalog = catalog.NewCachedReader(res.Store, catalog.ParseOrder(config.CategoryOrder), config.cacheTTL(), f.logger)
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Store:   repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*Result, error) {
	if err := postgres.RunMigrations(config.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to migrate PostgreSQL database: %w", err)
	}
	pool, err := postgres.NewPool(ctx, postgres.Config{URL: config.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL pool: %w", err)
	}
	repo := postgres.NewRepository(pool)

	f.logger.Info("Initialized PostgreSQL backend", "max_conns", pool.Config().MaxConns)

	return &Result{
		Store:   repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) *Result {
	dir := config.SeedDir
	if dir == "" {
		dir = "data"
	}
	store := memory.NewFromFiles(dir)

	f.logger.Info("Initialized memory backend", "seed_dir", dir)

	return &Result{
		Store: store,
		Ping:  func(context.Context) error { return nil },
	}
}
