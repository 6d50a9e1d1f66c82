package cron

import (
	"context"
	"fmt"

	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/metrics"
)

const notificationDispatchBatchSize = 100

type notificationDispatcher interface {
	DispatchPending(ctx context.Context, limit int) (int, error)
}

type NotificationDispatchJobParams struct {
	Logger        *logger.Logger
	Notifications notificationDispatcher
	Metrics       *metrics.CronJobMetrics
	BatchSize     int
}

// NewNotificationDispatchJob retries emails whose first delivery
// attempt failed.
func NewNotificationDispatchJob(params NotificationDispatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notification service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = notificationDispatchBatchSize
	}
	return &notificationDispatchJob{
		logg:          params.Logger,
		notifications: params.Notifications,
		metrics:       params.Metrics,
		batch:         batch,
	}, nil
}

type notificationDispatchJob struct {
	logg          *logger.Logger
	notifications notificationDispatcher
	metrics       *metrics.CronJobMetrics
	batch         int
}

func (j *notificationDispatchJob) Name() string { return "notification-dispatch" }

func (j *notificationDispatchJob) Run(ctx context.Context) error {
	sent, err := j.notifications.DispatchPending(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("notification dispatch: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddSwept(j.Name(), sent)
	}
	logCtx := j.logg.WithField(ctx, "notifications_sent", sent)
	j.logg.Info(logCtx, "notification dispatch complete")
	return nil
}
