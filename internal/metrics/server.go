package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"zipcrack/internal/logging"
)

// Server exposes /metrics over HTTP for the lifetime of a run.
type Server struct {
	logger   *slog.Logger
	listener net.Listener
	server   *http.Server

	closeOnce sync.Once
	closeErr  error
}

// Serve starts listening on bind and serves handler at /metrics until ctx is
// done or Close is called.
func Serve(ctx context.Context, bind string, handler http.Handler, logger *slog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, fmt.Errorf("metrics listen: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	s := &Server{
		logger:   logging.NewComponentLogger(logger, "metrics"),
		listener: listener,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "metrics server error", "metrics_server_failed", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	s.logger.Info("metrics listening", logging.String("address", listener.Addr().String()))
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close shuts the server down, waiting briefly for in-flight scrapes. It is
// safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeErr = s.server.Shutdown(shutdownCtx)
	})
	return s.closeErr
}
