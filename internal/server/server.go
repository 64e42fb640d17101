package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/namelens/fredlens/internal/errors"
	"github.com/namelens/fredlens/internal/observability"
	"github.com/namelens/fredlens/internal/server/handlers"
	servermw "github.com/namelens/fredlens/internal/server/middleware"
)

// Config wires the gateway to its FRED backends. Zero timeouts use the
// defaults below.
type Config struct {
	Host string
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Client   handlers.FredAPI
	Maps     handlers.MapsAPI
	Limiters map[string]handlers.StateReporter
}

// Server is the fredlens HTTP gateway.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    Config
}

// New builds the router. Requests only reach FRED through cfg.Client.
func New(cfg Config) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)

	// Recovery sits inside RequestMetrics so panics are counted as 500s.
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router: r,
		cfg:    cfg,
	}

	handlers.SetHTTPErrorResponder(HandleError)
	s.registerRoutes()

	return s
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDefault(s.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(s.cfg.WriteTimeout, 90*time.Second),
		IdleTimeout:  orDefault(s.cfg.IdleTimeout, 120*time.Second),
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.cfg.Port
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

// HandleError writes err as the gateway's JSON error envelope.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}
