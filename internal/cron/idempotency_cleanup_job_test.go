package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
)

type fakeIdempotencyCleanupRepo struct {
	finishedCutoff time.Time
	pendingCutoff  time.Time
	finishedErr    error
	pendingErr     error
}

func (f *fakeIdempotencyCleanupRepo) DeleteFinishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.finishedCutoff = cutoff
	return 3, f.finishedErr
}

func (f *fakeIdempotencyCleanupRepo) DeleteStalePendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.pendingCutoff = cutoff
	return 1, f.pendingErr
}

func TestIdempotencyCleanupUsesRetentionCutoffs(t *testing.T) {
	repo := &fakeIdempotencyCleanupRepo{}
	job, err := NewIdempotencyCleanupJob(IdempotencyCleanupJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "cron-test"}),
		Repository:    repo,
		RetentionDays: 2,
		PendingMaxAge: time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	job.(*idempotencyCleanupJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if got, want := repo.finishedCutoff, now.Add(-48*time.Hour); !got.Equal(want) {
		t.Fatalf("finished cutoff = %v, want %v", got, want)
	}
	if got, want := repo.pendingCutoff, now.Add(-time.Hour); !got.Equal(want) {
		t.Fatalf("pending cutoff = %v, want %v", got, want)
	}
}

func TestIdempotencyCleanupAggregatesErrors(t *testing.T) {
	repo := &fakeIdempotencyCleanupRepo{
		finishedErr: errors.New("finished boom"),
		pendingErr:  errors.New("pending boom"),
	}
	job, err := NewIdempotencyCleanupJob(IdempotencyCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	runErr := job.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected error")
	}
	// Both deletion failures must surface, not just the first.
	if !errors.Is(runErr, repo.finishedErr) || !errors.Is(runErr, repo.pendingErr) {
		t.Fatalf("expected both errors in %v", runErr)
	}
}

func TestIdempotencyCleanupStalePendingStillRunsAfterFinishedFailure(t *testing.T) {
	repo := &fakeIdempotencyCleanupRepo{finishedErr: errors.New("boom")}
	job, err := NewIdempotencyCleanupJob(IdempotencyCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	_ = job.Run(context.Background())
	if repo.pendingCutoff.IsZero() {
		t.Fatal("stale pending pass should run even when the finished pass fails")
	}
}
