package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is portable between PostgreSQL and SQLite. Identities are UUID strings.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		course_code TEXT NOT NULL,
		course_title TEXT NOT NULL,
		semester TEXT NOT NULL,
		session TEXT NOT NULL,
		level TEXT NOT NULL,
		credit_hours INTEGER NOT NULL CHECK (credit_hours > 0),
		score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
		grade TEXT NOT NULL,
		qp REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_user_id ON courses (user_id)`,
}

// Migrate creates the tables the service needs if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
