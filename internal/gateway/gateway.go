// ABOUTME: Gateway orchestrator wiring the backend client, tool registry, and MCP server
// ABOUTME: Manages the HTTP listener (TCP, TLS, or Tailscale) and graceful shutdown

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tailscale.com/tsnet"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/config"
	"github.com/parasol-research/persona-gateway/internal/docs"
	"github.com/parasol-research/persona-gateway/internal/mcp"
	"github.com/parasol-research/persona-gateway/internal/metrics"
	"github.com/parasol-research/persona-gateway/internal/tools"
)

// Gateway orchestrates the persona-gateway server components.
// It owns the backend client, tool registry, and MCP server, and serves them
// behind the auth and CORS middleware on a single HTTP listener.
type Gateway struct {
	config      *config.Config
	backend     *backend.Client
	registry    *tools.Registry
	mcpServer   *mcp.Server
	docs        *docs.Handler
	metrics     *metrics.Metrics
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	handler     http.Handler
	logger      *slog.Logger
	version     string
	startedAt   time.Time
}

// New creates a Gateway instance with the given configuration.
func New(cfg *config.Config, version string, logger *slog.Logger) (*Gateway, error) {
	if version == "" {
		version = "dev"
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	backendClient := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger.With("component", "backend"), m)

	registry, err := tools.DefaultRegistry(backendClient, logger.With("component", "tools"), m)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry: registry,
		Backend:  backendClient,
		Logger:   logger.With("component", "mcp"),
		Metrics:  m,
		Version:  version,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	g := &Gateway{
		config:    cfg,
		backend:   backendClient,
		registry:  registry,
		mcpServer: mcpServer,
		metrics:   m,
		logger:    logger.With("component", "gateway"),
		version:   version,
		startedAt: time.Now(),
	}

	if cfg.Docs.Enabled {
		docsHandler, err := docs.NewHandler(version)
		if err != nil {
			return nil, fmt.Errorf("rendering docs page: %w", err)
		}
		g.docs = docsHandler
	}

	g.handler = g.withCORS(g.buildRoutes())
	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	return g, nil
}

// Handler returns the fully wired HTTP handler, middleware included.
func (g *Gateway) Handler() http.Handler {
	return g.handler
}

// Run starts the gateway server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the
// server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServer starts the HTTP server in a goroutine, returning its error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and the configured
// grace period. Uses context.Background() intentionally since the original
// context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	grace := g.config.Server.ShutdownGrace
	if grace <= 0 {
		grace = config.DefaultShutdownGrace
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown gracefully stops the HTTP server and releases the tsnet node.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}
