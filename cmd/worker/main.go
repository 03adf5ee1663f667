package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ZubairAhmed90/multipos-sub002/internal/app"
	"github.com/ZubairAhmed90/multipos-sub002/internal/auth"
	jobmetrics "github.com/ZubairAhmed90/multipos-sub002/internal/jobs"
	"github.com/ZubairAhmed90/multipos-sub002/internal/masterdata"
	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/cache"
	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/db"
	"github.com/ZubairAhmed90/multipos-sub002/internal/settings"
	"github.com/ZubairAhmed90/multipos-sub002/internal/users"
	"github.com/ZubairAhmed90/multipos-sub002/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	locationRepo := masterdata.NewPostgresRepository(pool)
	settingsService := settings.NewService(settings.NewPostgresRepository(pool), redisClient, logger, cfg.SettingsCacheTTL)
	authService := auth.NewService(users.NewPostgresRepository(pool), auth.NewPostgresRegistry(pool))

	metrics := jobmetrics.NewMetrics(nil)
	warmup := jobs.SettingsWarmup{Logger: logger, Locations: locationRepo, Settings: settingsService, Metrics: metrics}
	purge := jobs.SessionPurge{Logger: logger, Auth: authService, Metrics: metrics}

	warmupTask, err := jobs.NewSettingsWarmupTask(jobs.SettingsWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSettingsWarmup, Handler: warmup.Handle},
			{Type: jobs.TaskSessionPurge, Handler: purge.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@every 15m", Task: warmupTask},
			{Spec: "@every 1h", Task: jobs.NewSessionPurgeTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
