// Command userapi serves the JSON user CRUD API the sync controller talks to.
package main

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

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/usersync/internal/app"
	"github.com/odyssey-erp/usersync/internal/observability"
	"github.com/odyssey-erp/usersync/internal/platform/db"
	"github.com/odyssey-erp/usersync/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("userapi stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	repo, closeRepo, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	router := app.NewAPIRouter(app.APIRouterParams{
		Logger:       logger,
		Config:       cfg,
		UsersHandler: users.NewHandler(logger, users.NewService(repo)),
		Metrics:      observability.NewMetrics("userapi"),
	})
	server := &http.Server{
		Addr:         cfg.APIAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting user api", slog.String("addr", cfg.APIAddr), slog.String("store", cfg.APIStore))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore picks the repository named by API_STORE.
func openStore(ctx context.Context, cfg *app.Config, logger *slog.Logger) (users.RepositoryPort, func(), error) {
	if cfg.APIStore == app.StoreMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return users.NewMemoryRepository(), func() {}, nil
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return nil, nil, err
	}
	repo := users.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repo, pool.Close, nil
}
