package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hibiken/asynq"

	"github.com/negocios/consola/jobs"
)

// Queue is the subset of jobs.Client used to trigger work by hand.
type Queue interface {
	EnqueueReportExport(ctx context.Context, report, window, format string) (string, error)
	EnqueueCacheBump(ctx context.Context) (string, error)
}

// QueueInspector reads queue state.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	queue     Queue
	inspector QueueInspector
	closers   []io.Closer
}

// NewJobsCLI initialises the CLI helpers using the provided Redis options.
func NewJobsCLI(opts asynq.RedisClientOpt) *JobsCLI {
	client := jobs.NewClient(opts)
	inspector := asynq.NewInspector(opts)
	return &JobsCLI{queue: client, inspector: inspector, closers: []io.Closer{inspector, client}}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TriggerOptions selects the job to enqueue.
type TriggerOptions struct {
	Job    string
	Report string
	Window string
	Format string
	Stdout io.Writer
	Stderr io.Writer
}

// TriggerCommand enqueues a supported job by name and prints its id.
func (c *JobsCLI) TriggerCommand(ctx context.Context, opts TriggerOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if c == nil || c.queue == nil {
		_, _ = fmt.Fprintln(opts.Stderr, "jobs: queue not configured")
		return 1
	}
	var (
		id  string
		err error
	)
	switch opts.Job {
	case jobs.TaskReportExport:
		id, err = c.queue.EnqueueReportExport(ctx, opts.Report, opts.Window, opts.Format)
	case jobs.TaskCacheBump:
		id, err = c.queue.EnqueueCacheBump(ctx)
	default:
		_, _ = fmt.Fprintf(opts.Stderr, "jobs: unsupported job %q\n", opts.Job)
		return 1
	}
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "jobs: enqueue %s: %v\n", opts.Job, err)
		return 1
	}
	_, _ = fmt.Fprintln(opts.Stdout, id)
	return 0
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string   `json:"queue"`
	Pending   int      `json:"pending"`
	Active    int      `json:"active"`
	Scheduled int      `json:"scheduled"`
	Retry     int      `json:"retry"`
	Failed    int      `json:"failed"`
	Next      []string `json:"next_scheduled,omitempty"`
}

// InspectQueue reports the queue metrics for the default queue together with
// the next scheduled task types.
func (c *JobsCLI) InspectQueue(ctx context.Context, size int) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	switch {
	case errors.Is(err, asynq.ErrQueueNotFound):
		return stats, nil
	case err != nil:
		return QueueStats{}, err
	}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Failed = info.Failed
	}
	if size <= 0 {
		size = 10
	}
	scheduled, err := c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
	if err != nil {
		return stats, err
	}
	for _, task := range scheduled {
		stats.Next = append(stats.Next, fmt.Sprintf("%s@%s", task.Type, task.NextProcessAt.Format("2006-01-02T15:04:05Z07:00")))
	}
	return stats, nil
}

// StatsCommand prints InspectQueue as JSON.
func (c *JobsCLI) StatsCommand(ctx context.Context, stdout, stderr io.Writer) int {
	stats, err := c.InspectQueue(ctx, 10)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "jobs: inspect queue: %v\n", err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		_, _ = fmt.Fprintf(stderr, "jobs: encode stats: %v\n", err)
		return 1
	}
	return 0
}
