// Package web provides the HTTP shell around the import service: the upload
// form, the import endpoint and a read-only view of the destination table.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csvimport/internal/core"
	weblog "github.com/JonMunkholm/csvimport/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// ImportService is the part of core.Service the handlers use.
type ImportService interface {
	Import(ctx context.Context, req core.ImportRequest) (*core.ImportResult, error)
	Rows(ctx context.Context) ([]core.ImportedRow, error)
	Status() core.ImportLimiterStatus
	Table() string
}

// Config holds the HTTP settings the server needs.
type Config struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration // non-import routes
	ImportTimeout  time.Duration // one import, including the wait for the slot
	MaxBodyBytes   int64
}

// Default limits applied when Config leaves them zero.
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultImportTimeout  = 5 * time.Minute
	DefaultMaxBodyBytes   = 100 << 20
)

// Server is the HTTP server for csvimport.
type Server struct {
	service ImportService
	cfg     Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service ImportService, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = DefaultImportTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
//
// Imports carry their own deadline (ImportTimeout), so the shorter request
// timeout only wraps the other routes.
func (s *Server) setupRoutes() {
	s.router.Post("/", s.handleImport)
	s.router.Post("/upload", s.handleImport)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Use(middleware.Compress(5))

		r.Get("/", s.handleForm)
		r.Get("/healthz", s.handleHealth)

		r.Route("/api", func(r chi.Router) {
			r.Get("/rows", s.handleRows)
			r.Get("/status", s.handleStatus)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr, "table", s.service.Table())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
