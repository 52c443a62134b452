// Command todoserver serves the todo tools over HTTP and, when a webhook is
// configured, posts reminders for items whose deadline is approaching.
//
// Usage:
//
//	todoserver                   run the server
//	todoserver webhook set URL   store the notification webhook in the keyring
//	todoserver webhook clear     remove the stored webhook
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nhle/mcp-todo/internal/config"
	"github.com/nhle/mcp-todo/internal/credential"
	"github.com/nhle/mcp-todo/internal/notify"
	"github.com/nhle/mcp-todo/internal/server"
	"github.com/nhle/mcp-todo/internal/store"
	"github.com/nhle/mcp-todo/internal/tools"
	"github.com/nhle/mcp-todo/internal/validator"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "webhook" {
		if err := runWebhookCommand(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run starts the server and blocks until a shutdown signal arrives or the
// listener fails. Deferred cleanup runs in both cases.
func run() error {
	cfg, err := config.Load(os.Getenv("TODO_CONFIG"))
	if err != nil {
		return err
	}
	cfg.ResolveWebhook(credential.Lookup)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", cfg.DatabasePath, err)
	}
	defer db.Close()
	logger.Info("database initialized", "path", cfg.DatabasePath)

	registry := tools.NewRegistry(db, validator.New())
	srv := server.New(registry, logger, server.Info{
		Name:       cfg.ServerName,
		Version:    cfg.ServerVersion,
		Production: cfg.IsProduction(),
	})

	if cfg.NotificationWebhook != "" {
		notifier := notify.New(db, notify.NewWebhook(cfg.NotificationWebhook),
			cfg.Notify.Interval, cfg.Notify.Window, notify.WithLogger(logger))
		notifier.Start()
		defer notifier.Stop()
	} else {
		logger.Info("no notification webhook configured, deadline notifier disabled")
	}

	logger.Info("starting server", "name", cfg.ServerName, "version", cfg.ServerVersion, "port", cfg.Port, "env", cfg.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serve(srv, ":"+cfg.Port, quit, logger)
}

// httpServer is the part of server.Server that serve drives.
type httpServer interface {
	Listen(addr string) error
	Shutdown(ctx context.Context) error
}

// serve listens on addr until quit fires or Listen fails. A failed Listen
// is returned; a signal triggers a graceful shutdown.
func serve(srv httpServer, addr string, quit <-chan os.Signal, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

func runWebhookCommand(args []string) error {
	ring, err := credential.Open()
	if err != nil {
		return err
	}

	switch {
	case len(args) == 2 && args[0] == "set":
		if err := validator.New().Validate(struct {
			URL string `json:"url" validate:"required,url"`
		}{args[1]}); err != nil {
			return err
		}
		return ring.Set(config.WebhookCredentialKey, args[1])
	case len(args) == 1 && args[0] == "clear":
		return ring.Delete(config.WebhookCredentialKey)
	default:
		return fmt.Errorf("usage: todoserver webhook set URL | todoserver webhook clear")
	}
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     logLevel(cfg.LogLevel),
		AddSource: !cfg.IsProduction(),
	}

	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func logLevel(level string) slog.Level {
	switch level {
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
