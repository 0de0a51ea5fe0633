package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inkwellhq/inkwell-backend/internal/cron"
	"github.com/inkwellhq/inkwell-backend/internal/users"
	"github.com/inkwellhq/inkwell-backend/pkg/config"
	"github.com/inkwellhq/inkwell-backend/pkg/db"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
	"github.com/inkwellhq/inkwell-backend/pkg/metrics"
	"github.com/inkwellhq/inkwell-backend/pkg/migrate"
	"github.com/inkwellhq/inkwell-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	repo := users.NewRepository(dbClient.DB())

	monthlyJob, err := cron.NewMonthlyReconcileJob(cron.MonthlyReconcileJobParams{
		Logger: logg,
		Repo:   repo,
		Spec:   cfg.Cron.MonthlySpec,
		Limit:  cfg.Cron.BatchLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create monthly reconcile job", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewDailySweepJob(cron.DailySweepJobParams{
		Logger: logg,
		Repo:   repo,
		Spec:   cfg.Cron.DailySpec,
		Limit:  cfg.Cron.BatchLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create daily sweep job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(monthlyJob, sweepJob),
		NewLock: func(jobName string) (cron.Lock, error) {
			return cron.NewRedisLock(redisClient, redisClient.LockKey("cron:"+jobName), cfg.Cron.LockTTL)
		},
		Metrics: metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
