package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/appid"
	"github.com/namelens/fredlens/internal/config"
	"github.com/namelens/fredlens/internal/core/cache"
	apperrors "github.com/namelens/fredlens/internal/errors"
	"github.com/namelens/fredlens/internal/metrics"
	"github.com/namelens/fredlens/internal/observability"
	"github.com/namelens/fredlens/internal/server"
	"github.com/namelens/fredlens/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the HTTP gateway in front of FRED.

The gateway serves /v1 lookups through the same dispatchers as the CLI, so
every caller shares one request budget and one cache. Without an API key it
only serves the health, version and metrics endpoints.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (validates the file; restart to apply)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	identity := appid.Get()
	namespace := identity.TelemetryNamespace()
	observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, namespace)
	logger := observability.ServerLogger

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port, namespace); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return apperrors.WrapInternal(cmd.Context(), err, "metrics initialization failed")
		}
	}
	metrics.SetServerStartTime(time.Now())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	srvCfg := server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var sess *session
	if err := requireAPIKey(cfg); err != nil {
		logger.Warn("FRED API key not set; serving health and version endpoints only")
	} else {
		sess, err = newSession(ctx, cfg)
		if err != nil {
			return err
		}
		srvCfg.Client = sess.client
		srvCfg.Maps = sess.mapsClient
		srvCfg.Limiters = map[string]handlers.StateReporter{
			scopeFred: sess.fred,
			scopeMaps: sess.maps,
		}
	}

	logger.Info("Initializing server",
		zap.String("service", identity.BinaryName),
		zap.String("namespace", namespace),
		zap.String("version", versionInfo.Version),
		zap.String("mode", cfg.API.Mode),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("metrics_port", observability.GetMetricsPort()))

	registerHealthChecks(cfg, sess)
	srv := server.New(srvCfg)

	// LIFO: the HTTP server stops first, then the ledgers are saved, then
	// the logger is flushed.
	signals.OnShutdown(func(ctx context.Context) error {
		if err := logger.Sync(); err != nil {
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		if sess == nil {
			return nil
		}
		if err := sess.Close(ctx); err != nil {
			logger.Warn("Failed to close FRED session", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.WrapInternal(ctx, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: validating config")
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				logger.Info("No config file found - using defaults and environment variables")
				return nil
			}
			logger.Error("Failed to reload config file", zap.String("file", viper.ConfigFileUsed()), zap.Error(err))
			return apperrors.WrapConfigInvalid(ctx, err, "config reload failed")
		}
		if _, err := config.Load(viper.GetViper()); err != nil {
			logger.Error("Reloaded config is invalid", zap.Error(err))
			return apperrors.WrapConfigInvalid(ctx, err, "config reload failed")
		}
		logger.Info("Configuration is valid; restart to apply dispatcher changes",
			zap.String("file", viper.ConfigFileUsed()))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server...", zap.String("host", cfg.Server.Host), zap.Int("port", cfg.Server.Port))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	go func() {
		if err := signals.Listen(ctx); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return apperrors.WrapInternal(ctx, err, "server error")
	}
	return nil
}

// registerHealthChecks installs the readiness checks. sess is nil when no
// API key is configured.
func registerHealthChecks(cfg *config.Config, sess *session) {
	hm := handlers.InitHealthManager(versionInfo.Version)

	hm.RegisterChecker("api_key", handlers.CheckFunc(func(ctx context.Context) error {
		if sess == nil {
			return apperrors.NewConfigInvalidError("FRED API key not set")
		}
		return nil
	}))

	if cfg.Metrics.Enabled {
		hm.RegisterChecker("telemetry", handlers.CheckFunc(func(ctx context.Context) error {
			if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
				return apperrors.NewInternalError("telemetry system not initialized")
			}
			return nil
		}))
	}

	if sess == nil {
		return
	}
	if sess.db != nil {
		hm.RegisterChecker("store", handlers.CheckFunc(func(ctx context.Context) error {
			return sess.db.DB.PingContext(ctx)
		}))
	}
	if r, ok := sess.cache.(*cache.Redis); ok {
		hm.RegisterChecker("redis", handlers.CheckFunc(r.Ping))
	}
}
