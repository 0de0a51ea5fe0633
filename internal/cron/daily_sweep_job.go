package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/inkwellhq/inkwell-backend/pkg/enums"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
)

const defaultSweepWindow = 72 * time.Hour

// DailySweepJobParams configures the expiring-subscription sweep.
type DailySweepJobParams struct {
	Logger *logger.Logger
	Repo   usersRepository
	Spec   string
	Window time.Duration
	Limit  int
	Now    func() time.Time
}

// NewDailySweepJob builds the job that flags active subscriptions ending
// within the warning window as past_due. The flag is an annotation only,
// plan and quota stay untouched until the monthly reconcile.
func NewDailySweepJob(params DailySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	spec := params.Spec
	if spec == "" {
		spec = "0 0 * * *"
	}
	window := params.Window
	if window <= 0 {
		window = defaultSweepWindow
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &dailySweepJob{
		logg:   params.Logger,
		repo:   params.Repo,
		spec:   spec,
		window: window,
		limit:  limit,
		now:    now,
	}, nil
}

type dailySweepJob struct {
	logg   *logger.Logger
	repo   usersRepository
	spec   string
	window time.Duration
	limit  int
	now    func() time.Time
}

func (j *dailySweepJob) Name() string { return "daily-sweep" }

func (j *dailySweepJob) Spec() string { return j.spec }

func (j *dailySweepJob) Run(ctx context.Context) error {
	now := j.now()
	var errs error
	flagged := 0

	for {
		batch, err := j.repo.ListActiveEndingBetween(ctx, now, now.Add(j.window), j.limit)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list ending subscriptions: %w", err))
		}
		if len(batch) == 0 {
			break
		}
		batchFlagged := 0
		for i := range batch {
			user := &batch[i]
			user.SubscriptionStatus = enums.SubscriptionStatusPastDue
			if err := j.repo.Update(ctx, user); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("flag user %s past due: %w", user.ID, err))
				continue
			}
			batchFlagged++
		}
		flagged += batchFlagged
		// Flagged rows leave the query's result set; a batch where nothing
		// succeeded would otherwise repeat forever.
		if batchFlagged == 0 || len(batch) < j.limit {
			break
		}
	}

	reportCtx := j.logg.WithField(ctx, "flagged", flagged)
	j.logg.Info(reportCtx, "daily sweep complete")
	return errs
}
