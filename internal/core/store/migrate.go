package store

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS response_cache (
		cache_key TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		payload TEXT NOT NULL,
		stored_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_response_cache_expires ON response_cache(expires_at);`,
	`CREATE INDEX IF NOT EXISTS idx_response_cache_path ON response_cache(path);`,
	`CREATE TABLE IF NOT EXISTS request_ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scope TEXT NOT NULL,
		requested_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_request_ledger_scope ON request_ledger(scope, requested_at);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
