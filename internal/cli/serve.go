package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/s1natex/tasks-comments-api/internal/config"
	"github.com/s1natex/tasks-comments-api/internal/db"
	"github.com/s1natex/tasks-comments-api/internal/logging"
	"github.com/s1natex/tasks-comments-api/internal/middleware"
	"github.com/s1natex/tasks-comments-api/internal/server"
	"github.com/s1natex/tasks-comments-api/internal/tasks"
	"github.com/s1natex/tasks-comments-api/internal/telemetry"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr, dbURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Open the store, apply the schema unless auto_migrate is off, and serve the API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root, dbURL)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dbURL, "db", "", "database url (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger) // for third-party packages that use slog

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		ServiceName:  cfg.Tracing.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing_shutdown_error", slog.String("error", err.Error()))
		}
	}()

	store, err := openStore(ctx, cfg.DatabaseURL, cfg.AutoMigrate)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store_close_error", slog.String("error", err.Error()))
		}
	}()
	logger.Info("store_open", slog.String("database", redact(cfg.DatabaseURL)))

	r := server.NewRouter(server.Options{
		Store:          store,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Limiter:        middleware.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	if err := server.Run(ctx, cfg.Addr, r, logger, shutdownGrace); err != nil {
		logger.Error("server_error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// openStore returns the in-memory store for "memory:" and a SQL store for
// everything else.
func openStore(ctx context.Context, url string, migrate bool) (tasks.Store, error) {
	if strings.TrimSpace(url) == "memory:" {
		return tasks.NewInMemoryStore(), nil
	}

	d, err := db.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := d.Migrate(ctx); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}
	return tasks.NewSQLStore(d), nil
}

func loadConfig(root *rootOptions, dbURL string) (config.Config, error) {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	return cfg, nil
}

// redact hides the password in a postgres url before it is logged.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return url
	}
	if user, _, hasPass := strings.Cut(userinfo, ":"); hasPass {
		return scheme + "://" + user + ":***@" + host
	}
	return url
}
