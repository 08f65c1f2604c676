package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/negocios/consola/internal/export"
	jobmetrics "github.com/negocios/consola/internal/jobs"
	"github.com/negocios/consola/internal/reporting"
)

// ReportViewer is the subset of reporting.Reports the export job needs.
type ReportViewer interface {
	Reload(ctx context.Context, kind reporting.Kind) error
	View(ctx context.Context, kind reporting.Kind, window string) (reporting.View, error)
}

// TableExporter renders a table to a document.
type TableExporter interface {
	Export(ctx context.Context, table reporting.Table, format export.Format) (export.Document, error)
}

// ReportExportJob writes queued exports to the storage directory.
type ReportExportJob struct {
	Reports    ReportViewer
	Exporter   TableExporter
	StorageDir string
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// Handle fulfils the asynq.HandlerFunc contract. Malformed payloads are not
// retried.
func (j *ReportExportJob) Handle(ctx context.Context, task *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil || j.Exporter == nil {
		return errors.New("report export: job not configured")
	}
	var payload ReportExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("report export: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	kind, err := reporting.ParseKind(payload.Report)
	if err != nil {
		return fmt.Errorf("report export: %v: %w", err, asynq.SkipRetry)
	}
	format, err := export.ParseFormat(payload.Format)
	if err != nil {
		return fmt.Errorf("report export: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskReportExport)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(
		slog.String("export_id", payload.ID),
		slog.String("report", string(kind)),
		slog.String("format", string(format)))

	if err := j.Reports.Reload(ctx, kind); err != nil {
		logger.Warn("reload before export", slog.Any("error", err))
	}
	view, err := j.Reports.View(ctx, kind, payload.Window)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidWindow) {
			return fmt.Errorf("report export: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("report export: %w", err)
	}
	doc, err := j.Exporter.Export(ctx, view.Table, format)
	if err != nil {
		return err
	}
	path, err := j.save(payload.ID, doc)
	if err != nil {
		return fmt.Errorf("report export: save: %w", err)
	}
	if w := task.ResultWriter(); w != nil {
		if _, err := w.Write([]byte(path)); err != nil {
			logger.Warn("write export result", slog.Any("error", err))
		}
	}
	logger.Info("report export ready", slog.String("file", path), slog.Int("bytes", len(doc.Body)))
	return nil
}

// save writes doc as <report base>-<id>.<ext> so concurrent exports of the
// same report never collide.
func (j *ReportExportJob) save(id string, doc export.Document) (string, error) {
	dir := j.StorageDir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "consola-exports")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(doc.Name)
	name := strings.TrimSuffix(doc.Name, ext) + "-" + id + ext
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (j *ReportExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportExport))
	}
	return slog.Default().With(slog.String("job", TaskReportExport))
}
