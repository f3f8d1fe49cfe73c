package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatrelay/internal/app"
	"github.com/vovakirdan/chatrelay/internal/config"
	applog "github.com/vovakirdan/chatrelay/internal/log"
)

// This mirrors the original's argc/argv contract — "Usage: <prog>
// <port>" — as a single required positional cobra argument, with
// everything else (log directory, admin address, config file) layered
// on top of viper-loaded defaults as flags.
func main() {
	var (
		configPath string
		adminAddr  string
		logDir     string
		logLevel   string
	)

	cfg := config.Default()
	bootLogger := applog.New("info")

	root := &cobra.Command{
		Use:   "chatrelay <port>",
		Short: "Multi-tenant TCP chat relay server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, resolvedPath, err := config.Load(bootLogger, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			cfg.Addr = ":" + args[0]

			if cmd.Flags().Changed("admin-addr") {
				cfg.AdminAddr = adminAddr
			}
			if cmd.Flags().Changed("log-dir") {
				cfg.LogDir = logDir
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			logger := applog.New(cfg.LogLevel)
			logger.Info().Str("config_path", resolvedPath).Str("addr", cfg.Addr).Msg("starting chatrelay server")

			application, err := app.New(&cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited with error: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (default: ./config.yaml)")
	root.Flags().StringVar(&adminAddr, "admin-addr", cfg.AdminAddr, "admin HTTP listen address")
	root.Flags().StringVar(&logDir, "log-dir", cfg.LogDir, "directory for the append-only chat log")
	root.Flags().StringVar(&logLevel, "log-level", cfg.LogLevel, "ops log level: debug, info, warn, error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
