package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/namelens/fredlens/internal/config"
)

const driverLibsql = "libsql"

// Store holds the libsql connection behind the persistent response cache
// and the saved request ledgers.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects to the configured database. Local files and :memory: are
// tuned for a single writer; remote libsql URLs are used as given.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	driver := strings.TrimSpace(cfg.Driver)
	if driver == "" {
		driver = driverLibsql
	}
	if driver != driverLibsql {
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	dsn, err := buildLibsqlDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverLibsql, dsn)
	if err != nil {
		return nil, fmt.Errorf("open libsql store: %w", err)
	}

	setup := func() error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping libsql store: %w", err)
		}
		if isLocalDSN(dsn) {
			return configureLocal(ctx, db)
		}
		return nil
	}
	if err := setup(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: db, driver: driver}, nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Store) Driver() string {
	if s == nil {
		return ""
	}
	return s.driver
}

// configureLocal serializes access through one connection so concurrent
// ledger writes queue on busy_timeout and :memory: stays a single database.
func configureLocal(ctx context.Context, db *sql.DB) error {
	db.SetMaxOpenConns(1)

	pragmas := []struct{ stmt, name string }{
		{"PRAGMA journal_mode=WAL", "enable wal"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
	}
	for _, p := range pragmas {
		var ignored any
		if err := db.QueryRowContext(ctx, p.stmt).Scan(&ignored); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return nil
}

func isLocalDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file:")
}

// buildLibsqlDSN prefers cfg.URL (with the auth token folded into its query)
// and otherwise turns cfg.Path into a file: DSN, creating its directory.
func buildLibsqlDSN(cfg config.StoreConfig) (string, error) {
	if raw := strings.TrimSpace(cfg.URL); raw != "" {
		return withAuthToken(raw, cfg.AuthToken)
	}

	path := strings.TrimSpace(cfg.Path)
	switch {
	case path == "":
		return "", errors.New("store path or url is required")
	case path == ":memory:", strings.HasPrefix(path, "libsql:"):
		return path, nil
	case strings.HasPrefix(path, "file:"):
		parsed, err := url.Parse(path)
		if err != nil {
			return "", fmt.Errorf("invalid store path: %w", err)
		}
		local := parsed.Path
		if local == "" {
			local = parsed.Opaque
		}
		if err := ensureStoreDir(strings.TrimPrefix(local, "//")); err != nil {
			return "", err
		}
		return path, nil
	default:
		if err := ensureStoreDir(path); err != nil {
			return "", err
		}
		return "file:" + filepath.Clean(path), nil
	}
}

func withAuthToken(dsn, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return dsn, nil
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid store url: %w", err)
	}
	q := parsed.Query()
	if q.Get("authToken") == "" {
		q.Set("authToken", token)
		parsed.RawQuery = q.Encode()
	}
	return parsed.String(), nil
}

func ensureStoreDir(path string) error {
	dir := filepath.Dir(filepath.Clean(path))
	if path == "" || dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	// #nosec G301 -- shared data directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return nil
}
