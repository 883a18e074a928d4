package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"grabbot/internal/bus"
	"grabbot/internal/config"
	"grabbot/internal/creds"
	"grabbot/internal/dispatch"
	"grabbot/internal/download"
	"grabbot/internal/fetch"
	"grabbot/internal/session"
	"grabbot/internal/status"
	"grabbot/internal/wa"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:     "grabbot",
		Short:   "grabbot: WhatsApp video download bot",
		Long:    "grabbot links to a WhatsApp account and downloads videos from links sent to it.",
		Version: version,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.grabbot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(runCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config and workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.General.Workspace, 0o755); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath, "workspace", cfg.General.Workspace)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot (session, dispatcher and status page)",
		RunE:  runBot,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("grabbot " + version)
		},
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func runBot(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		cfg = config.Defaults()
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.General.LogLevel),
	}))

	for _, dir := range []string{
		cfg.General.Workspace,
		cfg.Downloads.Dir,
		filepath.Dir(cfg.Session.AuthDBPath),
		filepath.Dir(cfg.Session.CredsDBPath),
		filepath.Dir(cfg.Session.PairCodeFile),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// Graceful shutdown on signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messageBus := bus.New(100, logger)
	defer messageBus.Close()

	credStore, err := creds.NewStore(cfg.Session.CredsDBPath, logger)
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}
	defer credStore.Close()

	controller := session.NewController(session.ControllerConfig{
		Factory:      wa.NewFactory(cfg.Session.AuthDBPath, logger),
		Creds:        credStore,
		Bus:          messageBus,
		PairCodeFile: cfg.Session.PairCodeFile,
		Logger:       logger,
	})

	handlers := []download.Handler{
		download.NewYouTube(download.YouTubeConfig{
			Fetcher:     fetch.NewYouTube(logger),
			Sender:      controller,
			Dir:         cfg.Downloads.Dir,
			MenuLimit:   cfg.Downloads.MenuLimit,
			SelectDelay: time.Duration(cfg.Downloads.SelectDelaySeconds) * time.Second,
			Logger:      logger,
		}),
		download.NewInstagram(controller),
		download.NewTikTok(controller),
		download.NewTwitter(controller),
	}

	dispatcher := dispatch.NewDispatcher(dispatch.DispatcherConfig{
		Bus:      messageBus,
		Sender:   controller,
		Handlers: handlers,
		Logger:   logger,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return controller.Run(ctx) })
	g.Go(func() error { return dispatcher.Run(ctx) })
	if cfg.Status.Enabled {
		statusServer := status.NewServer(status.ServerConfig{
			Host:   cfg.Status.Host,
			Port:   cfg.Status.Port,
			Source: controller,
			Logger: logger,
		})
		g.Go(func() error { return statusServer.Run(ctx) })
	}

	logger.Info("bot started. Press Ctrl+C to stop.", "version", version)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
