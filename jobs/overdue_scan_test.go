package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/observability"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/sales/invoices"
)

type stubMarker struct {
	asOf    time.Time
	flipped int64
	err     error
	calls   int
}

func (s *stubMarker) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	s.calls++
	s.asOf = asOf
	return s.flipped, s.err
}

func TestOverdueScanUsesPayloadDate(t *testing.T) {
	marker := &stubMarker{flipped: 3}
	job := NewOverdueScanJob(marker, slog.Default(), observability.NewMetrics())

	asOf := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	task, err := NewMarkOverdueTask(MarkOverduePayload{AsOf: asOf})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, marker.calls)
	assert.True(t, marker.asOf.Equal(asOf))
}

func TestOverdueScanDefaultsToNow(t *testing.T) {
	marker := &stubMarker{}
	job := NewOverdueScanJob(marker, slog.Default(), observability.NewMetrics())
	fixed := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	job.clock = func() time.Time { return fixed }

	task, err := NewMarkOverdueTask(MarkOverduePayload{})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.True(t, marker.asOf.Equal(fixed))
}

func TestOverdueScanPropagatesError(t *testing.T) {
	marker := &stubMarker{err: assert.AnError}
	job := NewOverdueScanJob(marker, slog.Default(), observability.NewMetrics())

	task, err := NewMarkOverdueTask(MarkOverduePayload{})
	require.NoError(t, err)

	assert.ErrorIs(t, job.Handle(context.Background(), task), assert.AnError)
}

func TestOverdueScanSkipsRetryOnBadPayload(t *testing.T) {
	marker := &stubMarker{}
	job := NewOverdueScanJob(marker, slog.Default(), observability.NewMetrics())

	task := asynq.NewTask(TaskInvoicesMarkOverdue, []byte(`not-json`))
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
	assert.Zero(t, marker.calls)
}

type stubAging struct {
	report *invoices.AgingReport
	err    error
	calls  int
}

func (s *stubAging) Aging(ctx context.Context) (*invoices.AgingReport, error) {
	s.calls++
	return s.report, s.err
}

func TestReceivablesWarmup(t *testing.T) {
	source := &stubAging{report: &invoices.AgingReport{Total: 1200}}
	job := NewReceivablesWarmupJob(source, slog.Default(), observability.NewMetrics())

	require.NoError(t, job.Handle(context.Background(), NewReceivablesWarmupTask()))
	assert.Equal(t, 1, source.calls)

	source.err = assert.AnError
	assert.ErrorIs(t, job.Handle(context.Background(), NewReceivablesWarmupTask()), assert.AnError)
}

func TestMarkOverduePayloadRoundTrip(t *testing.T) {
	asOf := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewMarkOverdueTask(MarkOverduePayload{AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, TaskInvoicesMarkOverdue, task.Type())

	var decoded MarkOverduePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.True(t, decoded.AsOf.Equal(asOf))
}
