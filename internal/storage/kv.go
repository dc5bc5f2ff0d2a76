package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/mapty/internal/config"
)

// KV is a durable key-value store for textual snapshots. Each call either
// completes fully or fails.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by cfg. For postgres, pending migrations
// are applied before connecting.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (KV, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		kv, err := OpenSQLite(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		log.Debug("sqlite store opened", "dir", cfg.Storage.Dir)
		return kv, nil
	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		log.Debug("migrations applied")
		db, err := New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Debug("database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Memory is an in-process KV for tests and dry runs.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// Compile-time check: *Memory satisfies KV.
var _ KV = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }
