package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/gpa-transcript-api/pkg/config"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON;",
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA busy_timeout = 5000;",
}

// NewSQLite opens the file-backed store. SQLite has a single writer, so the
// pool is pinned to one connection and pragmas are applied to it once.
func NewSQLite(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.SQLitePath == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sqlx.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	for _, pragma := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: pragma %q: %w", pragma, err)
		}
	}

	return db, nil
}
