package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviedeck/internal/config"
	mcpserver "github.com/vadimtrunov/moviedeck/internal/mcp"
)

// newMCPServeCmd returns the "mcp-serve" subcommand. It starts an MCP server
// over stdin/stdout so assistants can page through TMDb lists as tools.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Start MCP server over stdio",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// stdout carries the protocol.
			logger := config.SetupLoggerTo(os.Stderr, cfg.App.LogLevel)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			srv := mcpserver.NewServer(mcpserver.Deps{TMDb: initTMDb(cfg, logger)}, version, logger)
			return srv.ServeStdio(ctx)
		},
	}
}
