// Package server is the HTTP preview server: it renders diagrams of Python
// files below a root directory on request.
//
// # Endpoints
//
//	GET /healthz                     "ok"
//	GET /v1/version                  build information
//	GET /v1/formats                  supported formats and strategies
//	GET /v1/diagram?entry=app/main.py&format=svg&strategy=graph
//	GET /v1/model?entry=app/main.py  the extracted model as JSON
//
// entry is relative to the root; absolute paths and ".." are rejected with
// 400. Unreadable or invalid sources map to 404 and 422. Errors are JSON
// objects with "code" and "message".
//
// Optional /v1/diagram parameters: margin, recenter, border, graphviz,
// imports=false, refresh.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Server wraps an http.Server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New returns a server for handler listening on addr.
func New(addr string, handler http.Handler, logger *log.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting preview server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down preview server")
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errc
	}
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
