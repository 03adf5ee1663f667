package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZubairAhmed90/multipos-sub002/internal/app"
	"github.com/ZubairAhmed90/multipos-sub002/internal/auth"
	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/inventory"
	"github.com/ZubairAhmed90/multipos-sub002/internal/masterdata"
	"github.com/ZubairAhmed90/multipos-sub002/internal/observability"
	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/cache"
	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/db"
	"github.com/ZubairAhmed90/multipos-sub002/internal/sales"
	"github.com/ZubairAhmed90/multipos-sub002/internal/settings"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
	"github.com/ZubairAhmed90/multipos-sub002/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()

	userRepo := users.NewPostgresRepository(pool)
	userService := users.NewService(userRepo)
	authService := auth.NewService(userRepo, auth.NewPostgresRegistry(pool))
	settingsService := settings.NewService(settings.NewPostgresRepository(pool), redisClient, logger, cfg.SettingsCacheTTL)

	guard := authz.NewGuard(authz.DefaultPathMap(), settingsService, logger, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		UserService:       userService,
		Guard:             guard,
		AuthHandler:       auth.NewHandler(logger, authService, sessionManager, csrfManager, auditLogger),
		UsersHandler:      users.NewHandler(logger, userService),
		SettingsHandler:   settings.NewHandler(logger, settingsService),
		MasterDataHandler: masterdata.NewHandler(logger, masterdata.NewPostgresRepository(pool)),
		SalesHandler:      sales.NewHandler(logger, sales.NewPostgresRepository(pool), settingsService),
		InventoryHandler:  inventory.NewHandler(logger, inventory.NewPostgresRepository(pool), settingsService),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
