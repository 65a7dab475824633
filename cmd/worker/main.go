package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/app"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/observability"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/cache"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/db"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/invoices"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, 0)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	invoicesRepo := invoices.NewRepository(pool)
	receivablesService := invoices.NewReceivablesService(invoicesRepo, redisClient, logger)

	overdueJob := jobs.NewOverdueScanJob(invoicesRepo, logger, metrics)
	warmupJob := jobs.NewReceivablesWarmupJob(receivablesService, logger, metrics)

	overdueTask, err := jobs.NewMarkOverdueTask(jobs.MarkOverduePayload{})
	if err != nil {
		logger.Error("build overdue task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInvoicesMarkOverdue, Handler: overdueJob.Handle},
			{Type: jobs.TaskReceivablesWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OverdueScanCron, Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: jobs.NewReceivablesWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
