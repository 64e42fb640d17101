package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/appid"
	"github.com/namelens/fredlens/internal/config"
	"github.com/namelens/fredlens/internal/core/cache"
	"github.com/namelens/fredlens/internal/core/dispatch"
	"github.com/namelens/fredlens/internal/core/engine"
	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/core/store"
	"github.com/namelens/fredlens/internal/metrics"
	"github.com/namelens/fredlens/internal/observability"
)

// Ledger scopes. FRED and GeoFRED share one key, but each dispatcher keeps
// its own ledger.
const (
	scopeFred = "fred"
	scopeMaps = "maps"
)

// session holds the dispatchers and clients of one command run.
type session struct {
	cfg *config.Config

	fred *dispatch.Dispatcher
	maps *dispatch.Dispatcher

	client     *fred.Client
	mapsClient *fred.MapsClient

	// cache is nil when caching is disabled.
	cache cache.Store
	// db is nil unless the libsql cache or the persisted ledger needs it.
	db *store.Store

	closers []func() error
}

func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	s := &session{cfg: cfg}

	needStore := cfg.API.PersistLedger ||
		(cfg.Cache.Enabled && cache.NormalizeBackend(cfg.Cache.Backend) == cache.BackendLibsql)
	if needStore {
		db, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.db = db
		s.closers = append(s.closers, db.Close)
	}

	if cfg.Cache.Enabled {
		responses, err := s.openCache(ctx)
		if err != nil {
			_ = s.closeAll()
			return nil, err
		}
		s.cache = responses
	}

	var err error
	if s.fred, err = s.newDispatcher(ctx, scopeFred, cfg.API.BaseURL); err != nil {
		_ = s.closeAll()
		return nil, err
	}
	if s.maps, err = s.newDispatcher(ctx, scopeMaps, cfg.Maps.BaseURL); err != nil {
		_ = s.closeAll()
		return nil, err
	}
	s.client = fred.NewClient(s.fred)
	s.mapsClient = fred.NewMapsClient(s.maps)
	return s, nil
}

func (s *session) openCache(ctx context.Context) (cache.Store, error) {
	c := s.cfg.Cache
	switch backend := cache.NormalizeBackend(c.Backend); backend {
	case cache.BackendMemory:
		return cache.NewMemory(c.MaxEntries, c.TTL), nil
	case cache.BackendLibsql:
		return store.NewResponseCache(s.db, c.TTL), nil
	case cache.BackendRedis:
		r := cache.NewRedis(cache.RedisOptions{
			Addr:     s.cfg.Redis.Addr,
			Password: s.cfg.Redis.Password,
			DB:       s.cfg.Redis.DB,
			Prefix:   s.cfg.Redis.Prefix,
			TTL:      c.TTL,
		})
		s.closers = append(s.closers, r.Close)
		if err := r.Ping(ctx); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q (use memory, libsql or redis)", backend)
	}
}

func (s *session) newDispatcher(ctx context.Context, scope, baseURL string) (*dispatch.Dispatcher, error) {
	api := s.cfg.API
	opts := dispatch.Options{
		BaseURL:              baseURL,
		APIKey:               api.Key,
		Mode:                 engine.Mode(api.Mode),
		CacheEnabled:         s.cache != nil,
		MaxRequestsPerWindow: api.MaxRequestsPerWindow,
		Window:               api.Window,
		Timeout:              api.RequestTimeout(),
		RateLimitMargin:      api.RateLimitMargin,
		Retry:                dispatch.RetryPolicy{Attempts: s.cfg.Retry.Attempts, Wait: s.cfg.Retry.Wait},
		UserAgent:            fmt.Sprintf("%s/%s", appid.Get().BinaryName, versionInfo.Version),
		Logger:               observability.DispatchLogger(),
		Recorder:             metrics.NewDispatchRecorder(scope),
	}
	if s.cache != nil {
		opts.Cache = s.cache
	}

	if api.PersistLedger && s.db != nil {
		seed, err := s.db.LoadLedger(ctx, scope, time.Now().Add(-api.Window))
		if err != nil {
			return nil, fmt.Errorf("load %s ledger: %w", scope, err)
		}
		opts.Seed = seed
	}
	return dispatch.New(opts)
}

// Close saves the ledgers when persistence is on and releases the backends.
func (s *session) Close(ctx context.Context) error {
	var firstErr error
	if s.cfg.API.PersistLedger && s.db != nil {
		for scope, d := range map[string]*dispatch.Dispatcher{scopeFred: s.fred, scopeMaps: s.maps} {
			if d == nil {
				continue
			}
			if err := s.db.SaveLedger(ctx, scope, d.Snapshot()); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("save %s ledger: %w", scope, err)
			}
		}
	}
	if err := s.closeAll(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *session) closeAll() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// withSession loads the config, requires an API key and runs fn with a
// fresh session. The session is closed when fn returns.
func withSession(cmd *cobra.Command, prepare func(cfg *config.Config), fn func(ctx context.Context, s *session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if prepare != nil {
		prepare(cfg)
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil && observability.CLILogger != nil {
			observability.CLILogger.Warn("Failed to close session", zap.Error(err))
		}
	}()
	return fn(ctx, s)
}
