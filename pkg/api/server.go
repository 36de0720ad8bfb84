// Package api serves the pizzeria HTTP API.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"pizza-hq/pizzeria/pkg/api/middleware"
	"pizza-hq/pizzeria/pkg/auth"
	"pizza-hq/pizzeria/pkg/config"
	"pizza-hq/pizzeria/pkg/factory"
	"pizza-hq/pizzeria/pkg/store"
	"pizza-hq/pizzeria/pkg/telemetry/health"
	"pizza-hq/pizzeria/pkg/telemetry/metrics"
	"pizza-hq/pizzeria/pkg/telemetry/tracing"
)

// Deps are the collaborators the API is built on. DB, Issuer, Factory and
// Metrics are required.
type Deps struct {
	DB      *store.DB
	Issuer  *auth.Issuer
	Factory *factory.Client
	Metrics *metrics.Store

	// Health serves /api/health/ready. Optional.
	Health *health.Checker

	// Tracer records a span per request and per order stage. Optional.
	Tracer *tracing.Tracer

	// Registry is scraped at MetricsPath. Optional.
	Registry    *prometheus.Registry
	MetricsPath string

	Version string
	Logger  *slog.Logger
}

// Server is the pizzeria HTTP server.
type Server struct {
	config       config.ServerConfig
	deps         Deps
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new server.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultPrometheusPath
	}
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled, a
// termination signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("starting pizzeria server", "address", s.config.ListenAddress, "version", s.deps.Version)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.deps.Logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.deps.Logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.deps.Logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.deps.Logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.deps.Logger.Info("pizzeria server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()

	handler = middleware.TimeoutMiddleware(s.config.RequestTimeout)(handler)
	handler = middleware.AuthMiddleware(s.deps.Issuer)(handler)
	handler = middleware.CORSMiddleware(s.config.CORS)(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(s.deps.Logger)(handler)
	handler = middleware.TracingMiddleware(s.deps.Tracer)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	// Metrics middleware (outermost)
	handler = middleware.MetricsMiddleware(s.deps.Metrics)(handler)

	return handler
}

func (s *Server) routes() *mux.Router {
	h := &handlers{deps: s.deps}
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth", h.register).Methods(http.MethodPost)
	api.HandleFunc("/auth", h.login).Methods(http.MethodPut)
	api.Handle("/auth", middleware.RequireAuth(http.HandlerFunc(h.logout))).Methods(http.MethodDelete)

	api.HandleFunc("/order/menu", h.menu).Methods(http.MethodGet)
	api.Handle("/order/menu", middleware.RequireAuth(http.HandlerFunc(h.addMenuItem))).Methods(http.MethodPut)
	api.Handle("/order", middleware.RequireAuth(http.HandlerFunc(h.listOrders))).Methods(http.MethodGet)
	api.Handle("/order", middleware.RequireAuth(http.HandlerFunc(h.createOrder))).Methods(http.MethodPost)

	api.HandleFunc("/franchise", h.listFranchises).Methods(http.MethodGet)
	api.Handle("/franchise", middleware.RequireAuth(http.HandlerFunc(h.createFranchise))).Methods(http.MethodPost)
	api.Handle("/franchise/{franchiseID:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(h.deleteFranchise))).Methods(http.MethodDelete)
	api.Handle("/franchise/{franchiseID:[0-9]+}/store", middleware.RequireAuth(http.HandlerFunc(h.createStore))).Methods(http.MethodPost)
	api.Handle("/franchise/{franchiseID:[0-9]+}/store/{storeID:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(h.deleteStore))).Methods(http.MethodDelete)

	api.HandleFunc("/health/status", h.healthStatus).Methods(http.MethodGet)
	api.HandleFunc("/health/metrics", h.healthMetrics).Methods(http.MethodGet)
	if s.deps.Health != nil {
		api.Handle("/health/ready", s.deps.Health.Handler()).Methods(http.MethodGet)
	}
	api.HandleFunc("/docs", h.docs).Methods(http.MethodGet)

	r.HandleFunc("/", h.welcome).Methods(http.MethodGet)
	if s.deps.Registry != nil {
		r.Handle(s.deps.MetricsPath, metrics.Handler(s.deps.Registry)).Methods(http.MethodGet)
	}

	// A subrouter does not inherit these from its parent.
	for _, router := range []*mux.Router{r, api} {
		router.NotFoundHandler = http.HandlerFunc(notFound)
		router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	}
	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteMessage(w, http.StatusNotFound, "unknown endpoint")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}

// handlers holds the route implementations.
type handlers struct {
	deps Deps
}
