package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/observability"
)

// OverdueMarker flips open invoices past due date to the overdue status and
// reports how many rows changed. Satisfied by the invoices repository.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// OverdueScanJob runs the nightly overdue invoice sweep.
type OverdueScanJob struct {
	Marker  OverdueMarker
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(marker OverdueMarker, logger *slog.Logger, metrics *observability.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Marker:  marker,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the overdue scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Marker == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload MarkOverduePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.now()
	}

	logger := j.logger().With(slog.Time("as_of", asOf))
	start := j.now()

	flipped, err := j.Marker.MarkOverdue(ctx, asOf)
	if err != nil {
		j.Metrics.JobObserved(TaskInvoicesMarkOverdue, "error")
		logger.Error("overdue scan failed", slog.Any("error", err))
		return err
	}

	j.Metrics.JobObserved(TaskInvoicesMarkOverdue, "ok")
	logger.Info("overdue scan completed",
		slog.Int64("invoices_flipped", flipped),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInvoicesMarkOverdue))
	}
	return slog.Default().With(slog.String("job", TaskInvoicesMarkOverdue))
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
