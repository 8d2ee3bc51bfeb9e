package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/usersync/internal/app"
	"github.com/odyssey-erp/usersync/internal/console"
	"github.com/odyssey-erp/usersync/internal/observability"
	"github.com/odyssey-erp/usersync/internal/platform/cache"
	"github.com/odyssey-erp/usersync/internal/shared"
	"github.com/odyssey-erp/usersync/internal/syncctl"
	"github.com/odyssey-erp/usersync/internal/userapi"
	"github.com/odyssey-erp/usersync/internal/view"
)

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Serve the web console",
		Long: `Serve a browser console with the user table and the create and update
forms. Sessions and flash messages live in Redis (REDIS_ADDR).

SESSION_SECRET and CSRF_SECRET must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.InTestMode() {
				slog.Default().Info("test mode detected, skipping console startup")
				return nil
			}
			cfg, err := loadConfig(cmd, app.LoadConsoleConfig)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runConsole(ctx, cfg)
		},
	}
}

func runConsole(ctx context.Context, cfg *app.Config) error {
	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "usersync_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	metrics := observability.NewMetrics("usersync_console")
	client := userapi.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout})
	ctrl := syncctl.New(client, syncctl.Options{
		Logger:   logger,
		Notifier: console.SessionNotifier{},
		Recorder: metrics,
	})
	if res := ctrl.Start(ctx); !res.OK() {
		logger.Warn("initial load failed, serving an empty list", slog.String("api", client.BaseURL()))
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		ConsoleHandler: console.NewHandler(logger, ctrl, templates, csrfManager),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting console", slog.String("addr", cfg.AppAddr), slog.String("api", client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}
