package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/observability"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/invoices"
)

// AgingSource rebuilds the receivables aging report, repopulating its cache
// as a side effect. Satisfied by the receivables service.
type AgingSource interface {
	Aging(ctx context.Context) (*invoices.AgingReport, error)
}

// ReceivablesWarmupJob keeps the aging report cache warm so the first
// finance dashboard hit after expiry does not pay the full scan.
type ReceivablesWarmupJob struct {
	Source  AgingSource
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewReceivablesWarmupJob initialises the warmup handler.
func NewReceivablesWarmupJob(source AgingSource, logger *slog.Logger, metrics *observability.Metrics) *ReceivablesWarmupJob {
	return &ReceivablesWarmupJob{Source: source, Logger: logger, Metrics: metrics}
}

// Handle executes the warmup.
func (j *ReceivablesWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("receivables warmup: handler not configured")
	}
	start := time.Now()
	report, err := j.Source.Aging(ctx)
	if err != nil {
		j.Metrics.JobObserved(TaskReceivablesWarmup, "error")
		j.logger().Error("aging warmup failed", slog.Any("error", err))
		return err
	}
	j.Metrics.JobObserved(TaskReceivablesWarmup, "ok")
	j.logger().Info("aging warmup completed",
		slog.Float64("total_outstanding", report.Total),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *ReceivablesWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReceivablesWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReceivablesWarmup))
}
