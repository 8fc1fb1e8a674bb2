package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rustyeddy/stratfolio/pkg/logger"
)

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer serves handler on addr.
func NewServer(addr string, log *logger.Logger, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
	}
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
