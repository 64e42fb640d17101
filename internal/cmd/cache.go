package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/core/cache"
	"github.com/namelens/fredlens/internal/observability"
	"github.com/namelens/fredlens/internal/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or empty the response cache",
	Long: `Inspect or empty the response cache.

Only the libsql and redis backends outlive a single run; the memory backend
is always empty here.`,
}

// withCacheStore opens the configured cache backend without the dispatchers.
func withCacheStore(cmd *cobra.Command, fn func(ctx context.Context, store cache.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s := &session{cfg: cfg}
	defer func() { _ = s.closeAll() }()
	if cache.NormalizeBackend(cfg.Cache.Backend) == cache.BackendLibsql {
		db, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		s.db = db
		s.closers = append(s.closers, db.Close)
	}
	store, err := s.openCache(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, store)
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCacheStore(cmd, func(ctx context.Context, store cache.Store) error {
			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			return emit(cmd, output.CacheStats(stats))
		})
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove every cached response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCacheStore(cmd, func(ctx context.Context, store cache.Store) error {
			removed, err := store.Purge(ctx)
			if err != nil {
				return err
			}
			if observability.CLILogger != nil {
				observability.CLILogger.Debug("Cache purged", zap.Int64("removed", removed))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached response(s)\n", removed)
			return err
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
