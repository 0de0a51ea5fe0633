package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/inkwellhq/inkwell-backend/internal/quota"
	"github.com/inkwellhq/inkwell-backend/pkg/db/models"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
)

const defaultBatchLimit = 500

// usersRepository is the slice of the users repository the jobs need.
type usersRepository interface {
	ListExpired(ctx context.Context, now time.Time, limit int) ([]models.User, error)
	ListActive(ctx context.Context, afterID uuid.UUID, limit int) ([]models.User, error)
	ListActiveEndingBetween(ctx context.Context, from, to time.Time, limit int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// MonthlyReconcileJobParams configures the monthly billing-period job.
type MonthlyReconcileJobParams struct {
	Logger *logger.Logger
	Repo   usersRepository
	Spec   string
	Limit  int
	Now    func() time.Time
}

// NewMonthlyReconcileJob builds the job that closes out a billing month:
// lapsed subscriptions are downgraded first, then every remaining active
// user gets a fresh usage allowance. The ordering matters, a subscription
// that expired during the month must not have its quota refreshed.
func NewMonthlyReconcileJob(params MonthlyReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	spec := params.Spec
	if spec == "" {
		spec = "0 0 1 * *"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &monthlyReconcileJob{
		logg:  params.Logger,
		repo:  params.Repo,
		spec:  spec,
		limit: limit,
		now:   now,
	}, nil
}

type monthlyReconcileJob struct {
	logg  *logger.Logger
	repo  usersRepository
	spec  string
	limit int
	now   func() time.Time
}

func (j *monthlyReconcileJob) Name() string { return "monthly-reconcile" }

func (j *monthlyReconcileJob) Spec() string { return j.spec }

func (j *monthlyReconcileJob) Run(ctx context.Context) error {
	now := j.now()

	expired, expireErrs := j.expireLapsed(ctx, now)
	reset, resetErrs := j.resetActive(ctx)

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"expired": expired,
		"reset":   reset,
	})
	j.logg.Info(reportCtx, "monthly reconcile complete")
	return multierr.Append(expireErrs, resetErrs)
}

// expireLapsed downgrades every user whose paid period has ended. Each batch
// shrinks the candidate set, downgraded rows lose their end date, so looping
// until a short batch terminates.
func (j *monthlyReconcileJob) expireLapsed(ctx context.Context, now time.Time) (int, error) {
	var errs error
	processed := 0
	for {
		batch, err := j.repo.ListExpired(ctx, now, j.limit)
		if err != nil {
			return processed, multierr.Append(errs, fmt.Errorf("list expired users: %w", err))
		}
		if len(batch) == 0 {
			return processed, errs
		}
		batchProcessed := 0
		for i := range batch {
			user := &batch[i]
			quota.Downgrade(user)
			if err := j.repo.Update(ctx, user); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("downgrade user %s: %w", user.ID, err))
				continue
			}
			batchProcessed++
		}
		processed += batchProcessed
		// Downgraded rows fall out of the expired set; a batch where every
		// update failed would otherwise repeat forever.
		if batchProcessed == 0 || len(batch) < j.limit {
			return processed, errs
		}
	}
}

// resetActive grants a fresh month of usage to everyone still on an active
// subscription. Pages by id keyset, resetting does not change membership in
// the active set.
func (j *monthlyReconcileJob) resetActive(ctx context.Context) (int, error) {
	var errs error
	processed := 0
	var after uuid.UUID
	for {
		batch, err := j.repo.ListActive(ctx, after, j.limit)
		if err != nil {
			return processed, multierr.Append(errs, fmt.Errorf("list active users: %w", err))
		}
		if len(batch) == 0 {
			return processed, errs
		}
		for i := range batch {
			user := &batch[i]
			quota.ResetUsage(user, user.PlanType)
			if err := j.repo.Update(ctx, user); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("reset usage for user %s: %w", user.ID, err))
				continue
			}
			processed++
		}
		after = batch[len(batch)-1].ID
		if len(batch) < j.limit {
			return processed, errs
		}
	}
}
