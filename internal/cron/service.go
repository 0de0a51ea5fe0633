package cron

import (
	"context"
	"fmt"
	"time"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/inkwellhq/inkwell-backend/pkg/logger"
	"github.com/inkwellhq/inkwell-backend/pkg/metrics"
)

// LockFactory builds the single-flight lock guarding one job's runs.
type LockFactory func(jobName string) (Lock, error)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	NewLock  LockFactory
	Metrics  *metrics.CronJobMetrics
}

// Service schedules registered jobs on their calendar specs. Each run takes
// a per-job Redis lock first, so overlapping worker instances skip instead
// of doubling up.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	newLock  LockFactory
	metrics  *metrics.CronJobMetrics
	locks    map[string]Lock
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.NewLock == nil {
		return nil, fmt.Errorf("lock factory required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	service := &Service{
		logg:     params.Logger,
		registry: registry,
		newLock:  params.NewLock,
		metrics:  params.Metrics,
		locks:    make(map[string]Lock),
	}
	for _, job := range registry.Jobs() {
		lock, err := params.NewLock(job.Name())
		if err != nil {
			return nil, fmt.Errorf("build lock for %s: %w", job.Name(), err)
		}
		service.locks[job.Name()] = lock
	}
	return service, nil
}

// Run schedules every registered job and blocks until the context is
// canceled. In-flight jobs finish before Run returns.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	scheduler := cronv3.New()
	for _, job := range s.registry.Jobs() {
		job := job
		entry, err := scheduler.AddFunc(job.Spec(), func() {
			s.RunJob(ctx, job)
		})
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.Name(), job.Spec(), err)
		}
		scheduleCtx := s.logg.WithFields(ctx, map[string]any{
			"job":   job.Name(),
			"spec":  job.Spec(),
			"entry": int(entry),
		})
		s.logg.Info(scheduleCtx, "job scheduled")
	}

	scheduler.Start()
	<-ctx.Done()
	s.logg.Info(ctx, "cron service context canceled")

	stopped := scheduler.Stop()
	<-stopped.Done()
	return ctx.Err()
}

// RunJob executes one job under its lock, recording metrics.
func (s *Service) RunJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")

	lock := s.locks[job.Name()]
	if lock != nil {
		locked, err := lock.Acquire(jobCtx)
		if err != nil {
			s.logg.Error(jobCtx, "lock acquire failed", err)
			s.recordFailure(job.Name())
			return
		}
		if !locked {
			s.logg.Info(jobCtx, "another worker holds the lock; skipping run")
			return
		}
		defer func() {
			if relErr := lock.Release(jobCtx); relErr != nil {
				s.logg.Error(jobCtx, "failed to release job lock", relErr)
			}
		}()
	}

	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}
