package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gpa-transcript-api/pkg/config"
)

// Open connects to the configured record store.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "pg", "pgsql":
		return NewPostgres(cfg)
	case config.DriverSQLite, "sqlite3":
		return NewSQLite(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
