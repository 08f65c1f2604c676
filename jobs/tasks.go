package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportExport renders a report table to a file.
	TaskReportExport = "report:export"
	// TaskCacheBump invalidates every cached record-store collection.
	TaskCacheBump = "cache:bump"
)

// ReportExportPayload describes one queued export.
type ReportExportPayload struct {
	ID     string `json:"id"`
	Report string `json:"report"`
	Window string `json:"window,omitempty"`
	Format string `json:"format"`
}

// NewReportExportTask constructs an Asynq task.
func NewReportExportTask(payload ReportExportPayload) (*asynq.Task, error) {
	if payload.ID == "" {
		return nil, fmt.Errorf("jobs: export id required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportExport, data), nil
}

// NewCacheBumpTask constructs the scheduled cache invalidation task.
func NewCacheBumpTask() *asynq.Task {
	return asynq.NewTask(TaskCacheBump, nil)
}
