package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// LedgerSummary describes the saved request timestamps of one scope.
type LedgerSummary struct {
	Scope  string    `json:"scope"`
	Count  int       `json:"count"`
	Oldest time.Time `json:"oldest"`
	Newest time.Time `json:"newest"`
}

// LedgerQuery selects ledger scopes for listing or resetting.
type LedgerQuery struct {
	All   bool
	Scope string
}

func (q LedgerQuery) Validate() error {
	if q.All {
		return nil
	}
	if strings.TrimSpace(q.Scope) != "" {
		return nil
	}
	return errors.New("must specify --all or --scope")
}

func (q LedgerQuery) whereClause() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if q.All {
		return "", nil, nil
	}
	return "WHERE scope = ?", []any{strings.TrimSpace(q.Scope)}, nil
}

// LoadLedger returns the saved request timestamps of scope newer than since,
// oldest first.
func (s *Store) LoadLedger(ctx context.Context, scope string, since time.Time) ([]time.Time, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, errors.New("ledger scope is required")
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT requested_at
		FROM request_ledger
		WHERE scope = ? AND requested_at > ?
		ORDER BY requested_at
	`, scope, since.UTC().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var out []time.Time
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		out = append(out, time.Unix(0, ts).UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return out, nil
}

// SaveLedger replaces the saved timestamps of scope.
func (s *Store) SaveLedger(ctx context.Context, scope string, entries []time.Time) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	scope = strings.TrimSpace(scope)
	if scope == "" {
		return errors.New("ledger scope is required")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM request_ledger WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	for _, ts := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO request_ledger (scope, requested_at) VALUES (?, ?)
		`, scope, ts.UTC().UnixNano()); err != nil {
			return fmt.Errorf("save ledger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// ListLedgers summarizes saved ledgers per scope.
func (s *Store) ListLedgers(ctx context.Context, q LedgerQuery) ([]LedgerSummary, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT scope, COUNT(*), MIN(requested_at), MAX(requested_at)
		FROM request_ledger
		%s
		GROUP BY scope
		ORDER BY scope
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	entries := []LedgerSummary{}
	for rows.Next() {
		var (
			summary LedgerSummary
			oldest  sql.NullInt64
			newest  sql.NullInt64
		)
		if err := rows.Scan(&summary.Scope, &summary.Count, &oldest, &newest); err != nil {
			return nil, fmt.Errorf("scan ledgers: %w", err)
		}
		if oldest.Valid {
			summary.Oldest = time.Unix(0, oldest.Int64).UTC()
		}
		if newest.Valid {
			summary.Newest = time.Unix(0, newest.Int64).UTC()
		}
		entries = append(entries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}

	return entries, nil
}

// ResetLedgers deletes saved timestamps and returns how many were removed.
func (s *Store) ResetLedgers(ctx context.Context, q LedgerQuery) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM request_ledger
		%s
	`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("reset ledgers: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset ledgers: %w", err)
	}
	return affected, nil
}
