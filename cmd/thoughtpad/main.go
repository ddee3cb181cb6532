// Package main provides the thoughtpad CLI. With no subcommand it serves the
// notes store over MCP on stdio.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thoughtpad/thoughtpad-mcp/internal/config"
	"github.com/thoughtpad/thoughtpad-mcp/internal/logging"
	"github.com/thoughtpad/thoughtpad-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	// configFile and envFile are set by the --config and --env-file flags
	configFile string
	envFile    string

	// Initialized by PersistentPreRunE for every command except version
	cfg    *config.Config
	logger *zap.Logger
	store  *storage.SQLiteStorage
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "thoughtpad",
	Short: "Notes store served over the Model Context Protocol",
	Long: `thoughtpad keeps notes, checklist items and tags in a SQLite database and
serves them to MCP clients over stdio. Without a subcommand it runs serve.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
	RunE: runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default: ~/.thoughtpad/config.yaml)")
	flags.StringVar(&envFile, "env-file", "", "env file to load (default: .env)")
	flags.String("db", "", "database path (default: ~/.thoughtpad/thoughtpad.db)")
	flags.Int("workers", 0, "worker pool size (default: number of CPUs)")
	flags.Int("max-binds", 0, "maximum bind parameters per query (default: 999)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default: info)")
	flags.String("log-file", "", "also write JSON logs to this rotated file")
	flags.Bool("log-json", false, "log to stderr as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, builds the logger and opens the store
func setup(cmd *cobra.Command, args []string) error {
	// Skip init for version command
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(config.Options{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err = logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	store, err = storage.NewSQLiteStorageWithOptions(cfg.DBPath, storage.Options{
		MaxBindParameters: cfg.MaxBindParameters,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	logger.Debug("store opened",
		zap.String("path", cfg.DBPath),
		zap.String("driver", storage.DriverName),
		zap.String("build_mode", storage.BuildMode))
	return nil
}

// teardown closes the store and flushes the logger
func teardown() error {
	var err error
	if store != nil {
		err = store.Close()
		store = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}
