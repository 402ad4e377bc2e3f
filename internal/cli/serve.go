package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	cloudify "github.com/NotMyFault/cloudify-plugin"
	"github.com/NotMyFault/cloudify-plugin/internal/metrics"
	"github.com/NotMyFault/cloudify-plugin/internal/presentation/tui"
	httpAdapter "github.com/NotMyFault/cloudify-plugin/pkg/adapters/http"
	mcpAdapter "github.com/NotMyFault/cloudify-plugin/pkg/adapters/mcp"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
	"github.com/NotMyFault/cloudify-plugin/pkg/mapping"
)

// ShutdownTimeout bounds how long in-flight requests may take once shutdown starts.
const ShutdownTimeout = 5 * time.Second

// RunServe listens on addr and serves the transform API until ctx is cancelled.
// The start banner goes to out when it is non-nil.
func RunServe(ctx context.Context, addr string, logger *slog.Logger, out io.Writer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, logger, out)
}

// Serve serves the transform API and /metrics on ln until ctx is cancelled,
// then shuts the server down gracefully.
func Serve(ctx context.Context, ln net.Listener, logger *slog.Logger, out io.Writer) error {
	rec := metrics.New()
	engine := mapping.NewEngine(
		mapping.WithHooks(createDebugHooks(logger).Merge(rec.Hooks())),
		mapping.WithLogger(logger),
	)

	srv := &http.Server{
		Handler: httpAdapter.NewHandler(engine,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(rec.Handler()),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	if out != nil {
		tui.PrintBanner(out, cloudify.Version, ln.Addr().String())
	}

	go func() {
		logger.Info("Starting server", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to close server: %w", err)
			}
		}
		logger.Info("Server stopped gracefully")
		return nil
	}
}

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// RunMCP serves the transform as MCP tools until ctx is cancelled.
// The stdio transport speaks JSON-RPC over in and out; sse listens on addr.
func RunMCP(ctx context.Context, transport, addr string, logger *slog.Logger, in io.Reader, out io.Writer) error {
	engine := mapping.NewEngine(
		mapping.WithHooks(createDebugHooks(logger)),
		mapping.WithLogger(logger),
	)
	srv := mcpAdapter.NewServer(engine, logger)

	switch transport {
	case TransportStdio:
		logger.Info("Starting MCP server (stdio)")
		err := srv.ServeStdio(ctx, in, out)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	case TransportSSE:
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		return srv.ServeSSE(ctx, ln)
	default:
		return &domain.ConfigError{Problems: []string{
			fmt.Sprintf("unknown transport %q (supported: %s, %s)", transport, TransportStdio, TransportSSE),
		}}
	}
}
