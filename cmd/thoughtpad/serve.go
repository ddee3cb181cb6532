package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thoughtpad/thoughtpad-mcp/internal/dispatch"
	"github.com/thoughtpad/thoughtpad-mcp/internal/mcp"
	"github.com/thoughtpad/thoughtpad-mcp/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notes store over MCP on stdio",
	Long: `Serve runs the MCP server on stdin/stdout until stdin closes or the process
receives SIGINT or SIGTERM. Logs go to stderr; stdout carries protocol frames only.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := dispatch.NewPool(cfg.Workers)
	defer pool.Close()

	logger.Info("thoughtpad MCP server starting",
		zap.String("version", version),
		zap.String("build_mode", storage.BuildMode),
		zap.String("driver", storage.DriverName),
		zap.Int("workers", pool.Workers()),
		zap.String("db", cfg.DBPath))

	server := mcp.NewServer(store, pool, logger)
	err := server.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", zap.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
