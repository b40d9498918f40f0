// Package api provides the HTTP REST API for YucaBot.
//
// Endpoints:
//
//	POST /api/ingest  →  upload a document (multipart) and store it
//	POST /api/query   →  answer a question from stored documents
//	GET  /api/test    →  plain connectivity probe
//	GET  /health      →  liveness probe
//	GET  /ready       →  readiness probe (database ping)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, logging, CORS)
//   - health.go: health check endpoints (/health, /ready)
//   - ingest.go: document upload endpoint
//   - query.go: question answering endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yucabot/yucabot/internal/extract"
	"github.com/yucabot/yucabot/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Generation calls can take a while, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Service combines the two pipeline operations the API exposes.
// Implemented by pipeline.Pipeline.
type Service interface {
	Ingestor
	Querier
}

// Server is the HTTP server for YucaBot's REST API.
type Server struct {
	mux *http.ServeMux

	// Handlers
	health *HealthHandler
	ingest *IngestHandler
	query  *QueryHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(svc Service, registry *extract.Registry, pool *pgxpool.Pool, maxUploadBytes int64, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:    mux,
		health: NewHealthHandler(pool, logger),
		ingest: NewIngestHandler(svc, registry, maxUploadBytes, logger),
		query:  NewQueryHandler(svc, logger),
	}

	// Register all routes
	s.health.RegisterRoutes(mux)
	s.ingest.RegisterRoutes(mux)
	s.query.RegisterRoutes(mux)

	mux.HandleFunc("GET /api/test", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("API is running"))
	})

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → CORS → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware, corsMiddleware)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
