package store

import (
	"context"
	"fmt"

	"github.com/nhle/habito/internal/model"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open constructs the store selected by the storage configuration.
// An empty backend means SQLite.
func Open(ctx context.Context, cfg model.StorageConfig, opts ...Option) (Store, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		return NewSQLiteStore(cfg.SQLitePath, opts...)
	case BackendPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("postgres backend selected but no database URL configured")
		}
		return NewPostgresStore(ctx, cfg.PostgresURL, opts...)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
