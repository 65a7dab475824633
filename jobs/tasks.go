package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvoicesMarkOverdue flips open invoices past their due date.
	TaskInvoicesMarkOverdue = "invoices:mark_overdue"
	// TaskReceivablesWarmup refreshes the cached receivables aging report.
	TaskReceivablesWarmup = "receivables:warmup"
)

// MarkOverduePayload scopes an overdue scan to a point in time. A zero AsOf
// means "now" at execution time.
type MarkOverduePayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// NewMarkOverdueTask constructs the overdue scan task.
func NewMarkOverdueTask(payload MarkOverduePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoicesMarkOverdue, data), nil
}

// NewReceivablesWarmupTask constructs the aging warmup task.
func NewReceivablesWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReceivablesWarmup, nil)
}
