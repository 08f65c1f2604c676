package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/negocios/consola/internal/export"
	"github.com/negocios/consola/internal/reporting"
)

type fakeReports struct {
	reloaded []reporting.Kind
	window   string
	err      error
}

func (f *fakeReports) Reload(_ context.Context, kind reporting.Kind) error {
	f.reloaded = append(f.reloaded, kind)
	return nil
}

func (f *fakeReports) View(_ context.Context, kind reporting.Kind, window string) (reporting.View, error) {
	f.window = window
	if f.err != nil {
		return reporting.View{}, f.err
	}
	return reporting.View{Table: reporting.Table{Kind: kind, Title: "Informe"}}, nil
}

type fakeExporter struct {
	err error
}

func (f fakeExporter) Export(_ context.Context, table reporting.Table, format export.Format) (export.Document, error) {
	if f.err != nil {
		return export.Document{}, f.err
	}
	return export.Document{Name: table.FileName(string(format)), Body: []byte("a;b\r\n")}, nil
}

func exportTask(t *testing.T, payload ReportExportPayload) *asynq.Task {
	t.Helper()
	task, err := NewReportExportTask(payload)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestReportExportJobWritesFile(t *testing.T) {
	dir := t.TempDir()
	reports := &fakeReports{}
	job := &ReportExportJob{Reports: reports, Exporter: fakeExporter{}, StorageDir: dir}

	task := exportTask(t, ReportExportPayload{ID: "abc", Report: "diario", Window: "2024-03-05", Format: "csv"})
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "informe_diario-abc.csv"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "a;b\r\n" {
		t.Fatalf("unexpected export body %q", data)
	}
	if len(reports.reloaded) != 1 || reports.reloaded[0] != reporting.KindDaily {
		t.Fatalf("expected a daily reload, got %v", reports.reloaded)
	}
	if reports.window != "2024-03-05" {
		t.Fatalf("window not forwarded: %q", reports.window)
	}
}

func TestReportExportJobSkipsRetryOnBadPayload(t *testing.T) {
	job := &ReportExportJob{Reports: &fakeReports{}, Exporter: fakeExporter{}, StorageDir: t.TempDir()}
	cases := []*asynq.Task{
		asynq.NewTask(TaskReportExport, []byte("{")),
		exportTask(t, ReportExportPayload{ID: "1", Report: "anual", Format: "csv"}),
		exportTask(t, ReportExportPayload{ID: "2", Report: "mensual", Format: "docx"}),
	}
	for _, task := range cases {
		if err := job.Handle(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("expected SkipRetry for %s, got %v", task.Payload(), err)
		}
	}
	job.Reports = &fakeReports{err: reporting.ErrInvalidWindow}
	if err := job.Handle(context.Background(), exportTask(t, ReportExportPayload{ID: "3", Report: "diario", Window: "x", Format: "pdf"})); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for invalid window, got %v", err)
	}
}

func TestReportExportJobSurfacesFailures(t *testing.T) {
	job := &ReportExportJob{Reports: &fakeReports{err: reporting.ErrNotLoaded}, Exporter: fakeExporter{}, StorageDir: t.TempDir()}
	task := exportTask(t, ReportExportPayload{ID: "x", Report: "mensual", Format: "xlsx"})
	if err := job.Handle(context.Background(), task); !errors.Is(err, reporting.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}

	job = &ReportExportJob{Reports: &fakeReports{}, Exporter: fakeExporter{err: export.ErrRenderTimeout}, StorageDir: t.TempDir()}
	if err := job.Handle(context.Background(), task); !errors.Is(err, export.ErrRenderTimeout) {
		t.Fatalf("expected ErrRenderTimeout, got %v", err)
	}
}

func TestNewReportExportTaskRequiresID(t *testing.T) {
	if _, err := NewReportExportTask(ReportExportPayload{Report: "diario", Format: "pdf"}); err == nil {
		t.Fatal("expected error without id")
	}
	task := exportTask(t, ReportExportPayload{ID: "id", Report: "diario", Format: "pdf"})
	var payload ReportExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.Type() != TaskReportExport || payload.Format != "pdf" {
		t.Fatalf("unexpected task %s %+v", task.Type(), payload)
	}
}
