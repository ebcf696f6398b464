// internal/api/server.go
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/valpere/PriceScrapexter/internal/config"
	"github.com/valpere/PriceScrapexter/internal/monitoring"
	"github.com/valpere/PriceScrapexter/internal/scraper"
	"github.com/valpere/PriceScrapexter/internal/utils"
)

// Server exposes the scraping engine over HTTP.
type Server struct {
	config  config.ServerConfig
	metrics config.MetricsConfig
	engine  *scraper.Engine
	logger  utils.Logger
	rec     *monitoring.MetricsManager
	health  *monitoring.HealthManager
	version string

	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l utils.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics enables Prometheus collection and the metrics route.
func WithMetrics(m *monitoring.MetricsManager) Option {
	return func(s *Server) { s.rec = m }
}

// WithHealth replaces the default health manager.
func WithHealth(h *monitoring.HealthManager) Option {
	return func(s *Server) { s.health = h }
}

// WithVersion sets the version reported by the health route.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer builds the router and middleware chain.
func NewServer(cfg *config.Config, engine *scraper.Engine, opts ...Option) *Server {
	s := &Server{
		config:  cfg.Server,
		metrics: cfg.Metrics,
		engine:  engine,
		logger:  utils.NewNopLogger(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = monitoring.NewHealthManager(s.version)
	}

	s.handler = s.buildHandler()
	return s
}

// Handler returns the complete HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) buildHandler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoveryMiddleware, s.loggingMiddleware)

	r.HandleFunc("/health", s.health.HealthHandler()).Methods(http.MethodGet)
	if s.rec != nil && s.metrics.Enabled {
		r.Handle(s.metrics.Path, s.rec.MetricsHandler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	if lmt := s.newLimiter(); lmt != nil {
		api.Use(func(next http.Handler) http.Handler {
			return tollbooth.LimitHandler(lmt, next)
		})
	}
	api.Use(s.bodyLimitMiddleware)

	api.HandleFunc("/scrape", s.handleScrape).Methods(http.MethodPost)
	api.HandleFunc("/debug-scrape", s.handleDebugScrape).Methods(http.MethodPost)
	api.HandleFunc("/import", s.handleImport).Methods(http.MethodPost)
	api.HandleFunc("/export", s.handleExport).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// newLimiter returns a per-client limiter, or nil when rate limiting is off.
func (s *Server) newLimiter() *limiter.Limiter {
	if s.config.RequestsPerSecond <= 0 {
		return nil
	}
	lmt := tollbooth.NewLimiter(s.config.RequestsPerSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	if s.config.Burst > 0 {
		lmt.SetBurst(s.config.Burst)
	}
	lmt.SetMessageContentType("application/json; charset=utf-8")
	lmt.SetMessage(`{"error":"rate limit exceeded"}`)
	lmt.SetOnLimitReached(func(w http.ResponseWriter, r *http.Request) {
		s.logger.WithField("remote", r.RemoteAddr).Warn("rate limit exceeded")
	})
	return lmt
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.handler,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("API listening on %s", s.config.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
