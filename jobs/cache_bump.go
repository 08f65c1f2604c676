package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/negocios/consola/internal/jobs"
)

// Bumper invalidates cached collections.
type Bumper interface {
	Bump(ctx context.Context) (int64, error)
}

// CacheBumpJob periodically forces every instance to refetch from the store.
type CacheBumpJob struct {
	Cache   Bumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *CacheBumpJob) Handle(ctx context.Context, _ *asynq.Task) (resultErr error) {
	if j == nil || j.Cache == nil {
		return errors.New("cache bump: job not configured")
	}
	tracker := j.Metrics.Track(TaskCacheBump)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()
	version, err := j.Cache.Bump(ctx)
	if err != nil {
		return err
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("cache version bumped", slog.String("job", TaskCacheBump), slog.Int64("version", version))
	return nil
}
