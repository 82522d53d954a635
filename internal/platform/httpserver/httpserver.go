// Package httpserver owns the HTTP server lifecycle: port-fallback listen,
// serving, and graceful shutdown.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Server wraps http.Server with port-fallback startup and graceful shutdown.
type Server struct {
	srv          *http.Server
	logger       *slog.Logger
	portAttempts int
}

// New creates a server for the given base address. portAttempts is the number
// of consecutive ports tried when the base port is taken; 1 disables fallback.
func New(addr string, handler http.Handler, portAttempts int, logger *slog.Logger) *Server {
	if portAttempts < 1 {
		portAttempts = 1
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger:       logger,
		portAttempts: portAttempts,
	}
}

// Listen binds the server address, falling back to successive ports when the
// configured one is taken. Returns the bound listener; its address reports
// the actual port.
func (s *Server) Listen() (net.Listener, error) {
	host, portStr, err := net.SplitHostPort(s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse listen address %q: %w", s.srv.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		// Named port, no numeric fallback possible.
		return net.Listen("tcp", s.srv.Addr)
	}

	var lastErr error
	for i := 0; i < s.portAttempts; i++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port+i))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			if i > 0 && s.logger != nil {
				s.logger.Warn("configured port taken, using fallback",
					"configured_addr", s.srv.Addr,
					"addr", addr,
				)
			}
			return ln, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free port in %d attempts from %s: %w", s.portAttempts, s.srv.Addr, lastErr)
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
