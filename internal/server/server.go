package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lovemenu/internal/logger"
)

// Server owns the HTTP listener for the API
type Server struct {
	httpServer      *http.Server
	logger          *logger.Logger
	shutdownTimeout time.Duration
}

// New creates a server listening on port
func New(port int, handler http.Handler, shutdownTimeout time.Duration, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:          log,
		shutdownTimeout: shutdownTimeout,
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server_listening", fmt.Sprintf("HTTP server listening on %s", s.httpServer.Addr), "startup", nil)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests for up to the shutdown timeout
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("graceful_shutdown", "Shutting down HTTP server", "", nil)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
