package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Resource represents a resource that needs cleanup during shutdown
type Resource interface {
	Name() string
	Close(ctx context.Context) error
}

// ShutdownManager closes registered resources in reverse registration order.
type ShutdownManager struct {
	logger    *slog.Logger
	timeout   time.Duration
	resources []Resource
	mu        sync.Mutex
}

// NewShutdownManager creates a new shutdown manager
func NewShutdownManager(logger *slog.Logger, timeout time.Duration) *ShutdownManager {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{logger: logger, timeout: timeout}
}

// Register adds a resource to be cleaned up during shutdown
func (sm *ShutdownManager) Register(resource Resource) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.resources = append(sm.resources, resource)
	sm.logger.Debug("resource registered for shutdown", "resource", resource.Name())
}

// Shutdown closes every resource, last registered first, sharing one deadline.
// It keeps going after a failure and returns all errors joined.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	resources := append([]Resource(nil), sm.resources...)
	sm.resources = nil
	sm.mu.Unlock()

	sm.logger.Info("initiating graceful shutdown",
		"timeout", sm.timeout.String(),
		"resources", len(resources),
	)

	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		start := time.Now()
		if err := r.Close(ctx); err != nil {
			sm.logger.Error("failed to close resource",
				"resource", r.Name(),
				"error", err,
				"duration", time.Since(start).String(),
			)
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		sm.logger.Info("resource closed", "resource", r.Name(), "duration", time.Since(start).String())
	}
	return errors.Join(errs...)
}

// HTTPServerResource wraps an HTTP server for graceful shutdown
type HTTPServerResource struct {
	server *http.Server
	name   string
	// before runs ahead of Shutdown, e.g. to make the router refuse new work.
	before func()
}

func NewHTTPServerResource(name string, server *http.Server, before func()) *HTTPServerResource {
	return &HTTPServerResource{server: server, name: name, before: before}
}

func (h *HTTPServerResource) Name() string { return h.name }

func (h *HTTPServerResource) Close(ctx context.Context) error {
	if h.before != nil {
		h.before()
	}
	return h.server.Shutdown(ctx)
}

// DatabaseResource wraps a database pool for graceful shutdown
type DatabaseResource struct {
	pool *pgxpool.Pool
	name string
}

func NewDatabaseResource(name string, pool *pgxpool.Pool) *DatabaseResource {
	return &DatabaseResource{pool: pool, name: name}
}

func (d *DatabaseResource) Name() string { return d.name }

// pgxpool.Close blocks until connections are released and takes no context.
func (d *DatabaseResource) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.pool.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CustomResource wraps a custom cleanup function
type CustomResource struct {
	name      string
	closeFunc func(ctx context.Context) error
}

func NewCustomResource(name string, closeFunc func(ctx context.Context) error) *CustomResource {
	return &CustomResource{name: name, closeFunc: closeFunc}
}

func (c *CustomResource) Name() string { return c.name }

func (c *CustomResource) Close(ctx context.Context) error {
	return c.closeFunc(ctx)
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// listener fails, then shuts the manager down. The HTTP server should be the
// last resource registered so it drains before the stores close.
func Run(ctx context.Context, srv *http.Server, sm *ShutdownManager) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		sm.logger.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		sm.logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()
	return errors.Join(runErr, sm.Shutdown(shutdownCtx))
}
