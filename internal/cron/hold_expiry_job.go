package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/metrics"
)

const holdExpiryBatchSize = 200

type holdSweeper interface {
	ExpireHolds(ctx context.Context, now time.Time, limit int) (int, error)
}

type HoldExpiryJobParams struct {
	Logger    *logger.Logger
	Bookings  holdSweeper
	Metrics   *metrics.CronJobMetrics
	BatchSize int
}

// NewHoldExpiryJob sweeps pending bookings whose hold TTL has lapsed,
// cancelling them and releasing nothing (pending holds never committed
// slot capacity).
func NewHoldExpiryJob(params HoldExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking sweeper required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = holdExpiryBatchSize
	}
	return &holdExpiryJob{
		logg:     params.Logger,
		bookings: params.Bookings,
		metrics:  params.Metrics,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type holdExpiryJob struct {
	logg     *logger.Logger
	bookings holdSweeper
	metrics  *metrics.CronJobMetrics
	batch    int
	now      func() time.Time
}

func (j *holdExpiryJob) Name() string { return "hold-expiry" }

func (j *holdExpiryJob) Run(ctx context.Context) error {
	expired, err := j.bookings.ExpireHolds(ctx, j.now().UTC(), j.batch)
	if err != nil {
		return fmt.Errorf("hold expiry sweep: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddSwept(j.Name(), expired)
	}
	logCtx := j.logg.WithField(ctx, "holds_expired", expired)
	j.logg.Info(logCtx, "hold expiry sweep complete")
	return nil
}
