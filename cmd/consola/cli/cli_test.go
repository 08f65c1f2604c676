package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/negocios/consola/internal/export"
	"github.com/negocios/consola/internal/money"
	"github.com/negocios/consola/internal/records"
	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/jobs"
)

func newReports(t *testing.T) *reporting.Reports {
	t.Helper()
	daily := func(context.Context) ([]reporting.DailyRow, error) {
		return []reporting.DailyRow{
			{TransactionID: "1", TransactionType: records.KindSale, Date: "2024-03-05", Income: money.MustParse("100"), Subtotal: money.MustParse("100"), Total: money.MustParse("115")},
			{TransactionID: "2", TransactionType: records.KindPurchase, Date: "2024-03-06", Expense: money.MustParse("40"), Subtotal: money.MustParse("40"), Total: money.MustParse("46")},
		}, nil
	}
	monthly := func(context.Context) ([]reporting.MonthlyRow, error) { return nil, nil }
	accounts := func(context.Context) ([]records.Account, error) { return nil, nil }
	return reporting.NewReports(daily, monthly, accounts, reporting.Options{
		Location: time.UTC,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func newExportCLI(t *testing.T) *ExportCLI {
	t.Helper()
	exporter, err := export.NewExporter(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	cli, err := NewExportCLI(newReports(t), exporter)
	require.NoError(t, err)
	return cli
}

func TestExportCommandJSONSuccess(t *testing.T) {
	dir := t.TempDir()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := newExportCLI(t).ExportCommand(context.Background(), ExportOptions{
		Report:     "diario",
		Window:     "2024-03-05",
		Format:     "csv",
		OutDir:     dir,
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	require.Equal(t, 0, exitCode, stderr.String())

	var summary ExportSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.Equal(t, filepath.Join(dir, "informe_diario.csv"), summary.File)
	require.Equal(t, 1, summary.Rows)
	require.Equal(t, "Total del día: $115.00", summary.Caption)

	body, err := os.ReadFile(summary.File)
	require.NoError(t, err)
	require.Contains(t, string(body), "$115.00")
	require.NotContains(t, string(body), "$46.00")
}

func TestExportCommandRejectsBadFlags(t *testing.T) {
	cli := newExportCLI(t)
	cases := []ExportOptions{
		{Report: "semanal", Format: "csv"},
		{Report: "diario", Format: "docx"},
		{Report: "mensual", Window: "2024-13", Format: "csv"},
	}
	for _, opts := range cases {
		stderr := new(bytes.Buffer)
		opts.Stdout = io.Discard
		opts.Stderr = stderr
		opts.OutDir = t.TempDir()
		require.Equal(t, 1, cli.ExportCommand(context.Background(), opts), opts)
		require.NotEmpty(t, stderr.String())
	}
}

func TestExportCommandPDFDisabled(t *testing.T) {
	stderr := new(bytes.Buffer)
	exitCode := newExportCLI(t).ExportCommand(context.Background(), ExportOptions{
		Report: "diario",
		Format: "pdf",
		OutDir: t.TempDir(),
		Stdout: io.Discard,
		Stderr: stderr,
	})
	require.Equal(t, 1, exitCode)
	require.True(t, strings.Contains(stderr.String(), "pdf"), stderr.String())
}

type stubQueue struct {
	report, window, format string
	bumps                  int
	err                    error
}

func (q *stubQueue) EnqueueReportExport(_ context.Context, report, window, format string) (string, error) {
	q.report, q.window, q.format = report, window, format
	return "export-1", q.err
}

func (q *stubQueue) EnqueueCacheBump(context.Context) (string, error) {
	q.bumps++
	return "bump-1", q.err
}

type stubInspector struct {
	info      *asynq.QueueInfo
	err       error
	scheduled []*asynq.TaskInfo
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func (s stubInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return s.scheduled, nil
}

func TestTriggerCommand(t *testing.T) {
	queue := &stubQueue{}
	cli := &JobsCLI{queue: queue}

	stdout := new(bytes.Buffer)
	code := cli.TriggerCommand(context.Background(), TriggerOptions{
		Job: jobs.TaskReportExport, Report: "mensual", Window: "2024-03", Format: "xlsx",
		Stdout: stdout, Stderr: io.Discard,
	})
	require.Equal(t, 0, code)
	require.Equal(t, "export-1\n", stdout.String())
	require.Equal(t, "mensual", queue.report)
	require.Equal(t, "2024-03", queue.window)

	code = cli.TriggerCommand(context.Background(), TriggerOptions{Job: jobs.TaskCacheBump, Stdout: io.Discard, Stderr: io.Discard})
	require.Equal(t, 0, code)
	require.Equal(t, 1, queue.bumps)

	stderr := new(bytes.Buffer)
	code = cli.TriggerCommand(context.Background(), TriggerOptions{Job: "gl:integrity", Stdout: io.Discard, Stderr: stderr})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unsupported job")

	queue.err = errors.New("redis down")
	code = cli.TriggerCommand(context.Background(), TriggerOptions{Job: jobs.TaskCacheBump, Stdout: io.Discard, Stderr: io.Discard})
	require.Equal(t, 1, code)
}

func TestInspectQueue(t *testing.T) {
	next := time.Date(2024, 3, 7, 10, 15, 0, 0, time.UTC)
	cli := &JobsCLI{inspector: stubInspector{
		info:      &asynq.QueueInfo{Pending: 2, Active: 1, Failed: 3},
		scheduled: []*asynq.TaskInfo{{Type: jobs.TaskCacheBump, NextProcessAt: next}},
	}}
	stats, err := cli.InspectQueue(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Pending)
	require.Equal(t, 3, stats.Failed)
	require.Equal(t, []string{"cache:bump@2024-03-07T10:15:00Z"}, stats.Next)

	empty := &JobsCLI{inspector: stubInspector{err: asynq.ErrQueueNotFound}}
	stats, err = empty.InspectQueue(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, jobs.QueueDefault, stats.Queue)
	require.Zero(t, stats.Pending)
}

func TestStatsCommandPrintsJSON(t *testing.T) {
	cli := &JobsCLI{inspector: stubInspector{info: &asynq.QueueInfo{Retry: 4}}}
	stdout := new(bytes.Buffer)
	require.Equal(t, 0, cli.StatsCommand(context.Background(), stdout, io.Discard))
	require.Contains(t, stdout.String(), `"retry": 4`)
}
