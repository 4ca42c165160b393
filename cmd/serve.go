package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/averden/invoice-ninja-mcp/internal/config"
	"github.com/averden/invoice-ninja-mcp/internal/ninja"
	"github.com/averden/invoice-ninja-mcp/internal/tools"
)

const serverVersion = "1.2.0"

var (
	serveAddr  string
	serveStdio bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address for the HTTP transport (overrides config)")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "Serve over stdio instead of HTTP")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		// Missing credentials are the only fatal error class.
		logger.Error("configuration error", slog.Any("error", err))
		os.Exit(1)
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	api := ninja.New(cfg, ninja.WithLogger(logger))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "invoice-ninja-mcp",
		Version: serverVersion,
	}, nil)
	tools.RegisterAll(server, tools.NewHandler(api))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveStdio {
		logger.Info("starting Invoice Ninja MCP server on stdio")
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting Invoice Ninja MCP server", slog.String("addr", cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
