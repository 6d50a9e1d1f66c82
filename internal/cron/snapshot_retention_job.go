package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/metrics"
)

const (
	abandonedSnapshotDays = 30
	completedSnapshotDays = 7
)

type snapshotPruner interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type SnapshotRetentionJobParams struct {
	Logger        *logger.Logger
	Snapshots     snapshotPruner
	Metrics       *metrics.CronJobMetrics
	AbandonedDays int
	CompletedDays int
}

// NewSnapshotRetentionJob prunes cart snapshots in two sweeps:
// abandoned carts age out on the long window, converted carts on the
// short one once conversion reporting no longer needs them.
func NewSnapshotRetentionJob(params SnapshotRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Snapshots == nil {
		return nil, fmt.Errorf("snapshot repository required")
	}
	abandoned := params.AbandonedDays
	if abandoned <= 0 {
		abandoned = abandonedSnapshotDays
	}
	completed := params.CompletedDays
	if completed <= 0 {
		completed = completedSnapshotDays
	}
	return &snapshotRetentionJob{
		logg:      params.Logger,
		snapshots: params.Snapshots,
		metrics:   params.Metrics,
		abandoned: abandoned,
		completed: completed,
		now:       time.Now,
	}, nil
}

type snapshotRetentionJob struct {
	logg      *logger.Logger
	snapshots snapshotPruner
	metrics   *metrics.CronJobMetrics
	abandoned int
	completed int
	now       func() time.Time
}

func (j *snapshotRetentionJob) Name() string { return "snapshot-retention" }

func (j *snapshotRetentionJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs []error
	var swept int64

	staleCutoff := now.Add(-time.Duration(j.abandoned) * 24 * time.Hour)
	stale, err := j.snapshots.DeleteStale(ctx, staleCutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("abandoned snapshot sweep: %w", err))
	}
	swept += stale

	completedCutoff := now.Add(-time.Duration(j.completed) * 24 * time.Hour)
	converted, err := j.snapshots.DeleteCompletedBefore(ctx, completedCutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("completed snapshot sweep: %w", err))
	}
	swept += converted

	if j.metrics != nil {
		j.metrics.AddSwept(j.Name(), int(swept))
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"abandoned_deleted": stale,
		"completed_deleted": converted,
	})
	j.logg.Info(logCtx, "snapshot retention cleanup complete")
	return multierr.Combine(errs...)
}
