package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/appid"
	"github.com/namelens/fredlens/internal/observability"
	"github.com/namelens/fredlens/internal/server/handlers"
)

func (s *Server) registerRoutes() {
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	s.router.Get("/version", handlers.NewVersionHandler(s.cfg.Limiters))
	s.router.Get("/metrics", MetricsHandler)

	if s.cfg.Client != nil {
		api := &handlers.FredHandlers{
			Client:   s.cfg.Client,
			Maps:     s.cfg.Maps,
			Limiters: s.cfg.Limiters,
		}
		s.router.Route("/v1", func(r chi.Router) {
			api.Routes(r)
		})
	}

	s.registerAdminEndpoint()
}

// registerAdminEndpoint mounts /admin/signal when FREDLENS_ADMIN_TOKEN is set.
func (s *Server) registerAdminEndpoint() {
	envName := appid.Get().EnvName("ADMIN_TOKEN")
	adminToken := os.Getenv(envName)
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled", zap.String("env", envName))
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,
		RateBurst: 5,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
