package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
)

const (
	defaultRetentionDays = 2
	defaultPendingMaxAge = time.Hour
)

type idempotencyCleanupRepo interface {
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteStalePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type IdempotencyCleanupJobParams struct {
	Logger        *logger.Logger
	Repository    idempotencyCleanupRepo
	RetentionDays int
	PendingMaxAge time.Duration
}

// NewIdempotencyCleanupJob prunes the idempotency ledger: finished records
// past retention, and PENDING records old enough to be abandoned attempts.
func NewIdempotencyCleanupJob(params IdempotencyCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("idempotency repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultRetentionDays
	}
	pendingMaxAge := params.PendingMaxAge
	if pendingMaxAge <= 0 {
		pendingMaxAge = defaultPendingMaxAge
	}
	return &idempotencyCleanupJob{
		logg:          params.Logger,
		repo:          params.Repository,
		retention:     retention,
		pendingMaxAge: pendingMaxAge,
		now:           time.Now,
	}, nil
}

type idempotencyCleanupJob struct {
	logg          *logger.Logger
	repo          idempotencyCleanupRepo
	retention     int
	pendingMaxAge time.Duration
	now           func() time.Time
}

func (j *idempotencyCleanupJob) Name() string { return "idempotency-cleanup" }

func (j *idempotencyCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	finishedCutoff := now.Add(-time.Duration(j.retention) * 24 * time.Hour)
	pendingCutoff := now.Add(-j.pendingMaxAge)

	var errs error

	finished, err := j.repo.DeleteFinishedBefore(ctx, finishedCutoff)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("deleting finished records: %w", err))
	}

	stale, err := j.repo.DeleteStalePendingBefore(ctx, pendingCutoff)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("deleting stale pending records: %w", err))
	}

	ctx = j.logg.WithFields(ctx, map[string]any{
		"finished_deleted": finished,
		"pending_deleted":  stale,
	})
	j.logg.Info(ctx, "idempotency ledger pruned")
	return errs
}
