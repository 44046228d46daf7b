// Package jobs holds the background maintenance work that keeps the
// append-only log tables bounded. The runner is queue-agnostic; pair it with
// the adapters/gojob package to schedule it on a go-job worker.
package jobs

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-triggers/core"
)

// JobIDRetentionPurge matches the queue job id registered by adapters/gojob.
const JobIDRetentionPurge = "triggers.retention.purge"

// RetentionReport summarizes one purge round.
type RetentionReport struct {
	Cutoff              time.Time
	PollRequestsDeleted int64
	DeliveriesDeleted   int64
}

// RetentionRunner prunes poll request logs and delivery events older than
// the configured retention window.
type RetentionRunner struct {
	pollRequests   core.PollRequestStore
	deliveryEvents core.DeliveryEventStore
	maxAge         time.Duration
	logger         core.Logger
	now            func() time.Time
}

type RetentionOption func(*RetentionRunner)

func WithRetentionLogger(logger core.Logger) RetentionOption {
	return func(r *RetentionRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetentionClock overrides the time source, mostly for tests.
func WithRetentionClock(now func() time.Time) RetentionOption {
	return func(r *RetentionRunner) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRetentionRunner(
	pollRequests core.PollRequestStore,
	deliveryEvents core.DeliveryEventStore,
	retention core.RetentionConfig,
	opts ...RetentionOption,
) (*RetentionRunner, error) {
	if pollRequests == nil {
		return nil, fmt.Errorf("jobs: poll request store is required")
	}
	if deliveryEvents == nil {
		return nil, fmt.Errorf("jobs: delivery event store is required")
	}
	maxAge := retention.MaxAge
	if maxAge <= 0 {
		maxAge = core.DefaultConfig().Retention.MaxAge
	}
	runner := &RetentionRunner{
		pollRequests:   pollRequests,
		deliveryEvents: deliveryEvents,
		maxAge:         maxAge,
		logger:         glog.Ensure(nil),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// Run deletes every poll request and delivery event older than the retention
// window and reports what went. A failure on one table still attempts the
// other so a broken index cannot block the whole purge.
func (r *RetentionRunner) Run(ctx context.Context) (RetentionReport, error) {
	if r == nil {
		return RetentionReport{}, fmt.Errorf("jobs: retention runner is not configured")
	}

	cutoff := r.now().UTC().Add(-r.maxAge)
	report := RetentionReport{Cutoff: cutoff}

	pollDeleted, pollErr := r.pollRequests.PurgeOlderThan(ctx, cutoff)
	report.PollRequestsDeleted = pollDeleted

	deliveriesDeleted, deliveryErr := r.deliveryEvents.PurgeOlderThan(ctx, cutoff)
	report.DeliveriesDeleted = deliveriesDeleted

	if pollErr != nil {
		r.logger.Error("retention purge failed for poll requests", "error", pollErr)
		return report, fmt.Errorf("jobs: purge poll requests: %w", pollErr)
	}
	if deliveryErr != nil {
		r.logger.Error("retention purge failed for delivery events", "error", deliveryErr)
		return report, fmt.Errorf("jobs: purge delivery events: %w", deliveryErr)
	}

	r.logger.Info("retention purge complete",
		"cutoff", cutoff,
		"poll_requests_deleted", pollDeleted,
		"deliveries_deleted", deliveriesDeleted,
	)
	return report, nil
}

// ExecutionMessage describes the purge as queue work. The idempotency key is
// day-scoped so re-enqueueing within the same day collapses into one run.
func (r *RetentionRunner) ExecutionMessage() *core.JobExecutionMessage {
	day := r.now().UTC().Format("2006-01-02")
	return &core.JobExecutionMessage{
		JobID:          JobIDRetentionPurge,
		Parameters:     map[string]any{"max_age": r.maxAge.String()},
		IdempotencyKey: JobIDRetentionPurge + ":" + day,
		DedupPolicy:    "drop",
	}
}

// HandleDelivery runs the purge for a dequeued message, acking on success and
// nacking with requeue on failure so the worker's retry policy applies.
func (r *RetentionRunner) HandleDelivery(ctx context.Context, delivery core.JobDelivery) error {
	if delivery == nil {
		return fmt.Errorf("jobs: delivery is required")
	}
	if _, err := r.Run(ctx); err != nil {
		nackErr := delivery.Nack(ctx, core.JobNackOptions{
			Requeue: true,
			Delay:   time.Minute,
			Reason:  err.Error(),
		})
		if nackErr != nil {
			return fmt.Errorf("jobs: nack after failed purge: %w", nackErr)
		}
		return err
	}
	return delivery.Ack(ctx)
}
