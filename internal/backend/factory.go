// Package backend builds the blob store that holds the ledger.
package backend

import (
	"context"
	"fmt"

	"github.com/davidsheshee-hash/shop-ledger/internal/ledger"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{
		logger: log.OrDefault(logger, log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case FileBackend:
		return f.createFileBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteBlobStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite blob store: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("sqlite not reachable: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	store, err := storage.NewFileBlobStore(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file blob store: %w", err)
	}

	f.logger.Info("Initialized file backend", "data_directory", config.DataDirectory)

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Warn("Using memory backend, the ledger is lost on exit")

	store := storage.NewMemoryBlobStore()
	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

// OpenLedger creates the backend and opens the ledger stored under blobKey.
// The caller owns the returned backend and must run its Cleanup.
func OpenLedger(ctx context.Context, f Factory, config Config, blobKey string, opts ...ledger.Option) (*ledger.Store, *BackendResult, error) {
	if !storage.ValidKey(blobKey) {
		return nil, nil, fmt.Errorf("invalid blob key %q", blobKey)
	}
	result, err := f.CreateBackend(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	store, err := ledger.Open(ctx, storage.Bind(result.Store, blobKey), opts...)
	if err != nil {
		_ = result.Cleanup()
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	return store, result, nil
}
