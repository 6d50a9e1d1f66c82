package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

type fakeHoldSweeper struct {
	expired   int
	lastLimit int
	lastNow   time.Time
	err       error
}

func (f *fakeHoldSweeper) ExpireHolds(ctx context.Context, now time.Time, limit int) (int, error) {
	f.lastNow = now
	f.lastLimit = limit
	return f.expired, f.err
}

func TestHoldExpiryJobSweeps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sweeper := &fakeHoldSweeper{expired: 3}
	jobIface, err := NewHoldExpiryJob(HoldExpiryJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Bookings: sweeper,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job := jobIface.(*holdExpiryJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sweeper.lastNow.Equal(now) {
		t.Fatalf("expected sweep at %s, got %s", now, sweeper.lastNow)
	}
	if sweeper.lastLimit != holdExpiryBatchSize {
		t.Fatalf("expected default batch %d, got %d", holdExpiryBatchSize, sweeper.lastLimit)
	}
}

func TestHoldExpiryJobPropagatesError(t *testing.T) {
	jobIface, err := NewHoldExpiryJob(HoldExpiryJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Bookings: &fakeHoldSweeper{err: errors.New("db down")},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeSnapshotPruner struct {
	deleted             int64
	lastStaleCutoff     time.Time
	lastCompletedCutoff time.Time
	staleErr            error
	completedErr        error
}

func (f *fakeSnapshotPruner) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	f.lastStaleCutoff = cutoff
	return f.deleted, f.staleErr
}

func (f *fakeSnapshotPruner) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.lastCompletedCutoff = cutoff
	return f.deleted, f.completedErr
}

func TestSnapshotRetentionJobUsesBothCutoffs(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pruner := &fakeSnapshotPruner{deleted: 12}
	jobIface, err := NewSnapshotRetentionJob(SnapshotRetentionJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Snapshots: pruner,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job := jobIface.(*snapshotRetentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedStale := now.Add(-abandonedSnapshotDays * 24 * time.Hour)
	if !pruner.lastStaleCutoff.Equal(expectedStale) {
		t.Fatalf("expected stale cutoff %s, got %s", expectedStale, pruner.lastStaleCutoff)
	}
	expectedCompleted := now.Add(-completedSnapshotDays * 24 * time.Hour)
	if !pruner.lastCompletedCutoff.Equal(expectedCompleted) {
		t.Fatalf("expected completed cutoff %s, got %s", expectedCompleted, pruner.lastCompletedCutoff)
	}
}

func TestSnapshotRetentionJobRunsSecondSweepAfterFailure(t *testing.T) {
	pruner := &fakeSnapshotPruner{staleErr: errors.New("lock timeout")}
	jobIface, err := NewSnapshotRetentionJob(SnapshotRetentionJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Snapshots: pruner,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if pruner.lastCompletedCutoff.IsZero() {
		t.Fatal("expected completed sweep to run despite stale sweep failure")
	}
}

type fakeOutboxRetentionRepo struct {
	deleted    int64
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	return f.deleted, f.err
}

func TestOutboxRetentionJobDeletesPublishedRows(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{}
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.Add(-outboxRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: &fakeOutboxRetentionRepo{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeDispatcher struct {
	sent      int
	lastLimit int
	err       error
}

func (f *fakeDispatcher) DispatchPending(ctx context.Context, limit int) (int, error) {
	f.lastLimit = limit
	return f.sent, f.err
}

func TestNotificationDispatchJobRetriesPending(t *testing.T) {
	dispatcher := &fakeDispatcher{sent: 4}
	jobIface, err := NewNotificationDispatchJob(NotificationDispatchJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		Notifications: dispatcher,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := jobIface.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dispatcher.lastLimit != notificationDispatchBatchSize {
		t.Fatalf("expected default batch %d, got %d", notificationDispatchBatchSize, dispatcher.lastLimit)
	}
}
