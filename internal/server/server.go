// Package server owns the HTTP listener lifecycle: startup, signal
// handling, and ordered teardown of the connections behind it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// CleanupFunc tears down one component during shutdown.
type CleanupFunc func(ctx context.Context) error

type cleanup struct {
	name string
	fn   CleanupFunc
}

// Server wraps http.Server with signal-driven graceful shutdown.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	cleanups        []cleanup
}

// New creates a Server listening on the given port.
func New(handler http.Handler, port int, readTimeout, writeTimeout, shutdownTimeout time.Duration, logger *slog.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// OnShutdown registers a named teardown step. Steps run LIFO after the
// listener drains, so the connection wired first closes last. Register
// everything during wiring, before Run; registration is not safe to
// call concurrently with shutdown.
func (s *Server) OnShutdown(name string, fn CleanupFunc) {
	s.cleanups = append(s.cleanups, cleanup{name: name, fn: fn})
}

// Run serves until SIGINT or SIGTERM arrives, then drains in-flight
// requests and runs the registered teardown steps.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
		return s.shutdown()
	}
}

// shutdown drains the listener, then walks the cleanup stack in
// reverse. Every step runs even when an earlier one fails; the
// failures are joined into the returned error.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.http.SetKeepAlivesEnabled(false)

	var errs []error
	s.logger.Info("draining HTTP server", "timeout", s.shutdownTimeout)
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	for i := len(s.cleanups) - 1; i >= 0; i-- {
		step := s.cleanups[i]
		if err := step.fn(ctx); err != nil {
			s.logger.Error("teardown step failed", "component", step.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		s.logger.Info("component stopped", "component", step.name)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("server stopped")
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}
