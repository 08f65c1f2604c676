// Package cli holds the operator subcommands of the consola binary.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/negocios/consola/internal/export"
	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/jobs"
)

// ExportOptions defines available flags for the export command.
type ExportOptions struct {
	Report     string
	Window     string
	Format     string
	OutDir     string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// ExportSummary describes the JSON response for export.
type ExportSummary struct {
	File     string   `json:"file"`
	Bytes    int      `json:"bytes"`
	Rows     int      `json:"rows"`
	Caption  string   `json:"caption"`
	Notice   string   `json:"notice,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ExportCLI renders a report straight from the record store to disk.
type ExportCLI struct {
	reports  jobs.ReportViewer
	exporter jobs.TableExporter
}

// NewExportCLI constructs the export command.
func NewExportCLI(reports jobs.ReportViewer, exporter jobs.TableExporter) (*ExportCLI, error) {
	if reports == nil || exporter == nil {
		return nil, fmt.Errorf("export cli: reports and exporter required")
	}
	return &ExportCLI{reports: reports, exporter: exporter}, nil
}

// ExportCommand loads the report, renders it for the window and writes
// informe_<kind>.<ext> into the output directory.
func (c *ExportCLI) ExportCommand(ctx context.Context, opts ExportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	kind, err := reporting.ParseKind(opts.Report)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: --informe must be diario or mensual: %v\n", err)
		return 1
	}
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: --formato must be pdf, xlsx or csv: %v\n", err)
		return 1
	}
	if err := reporting.ValidateWindow(kind, opts.Window); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}
	if err := c.reports.Reload(ctx, kind); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: load %s: %v\n", kind, err)
	}
	view, err := c.reports.View(ctx, kind, opts.Window)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}
	doc, err := c.exporter.Export(ctx, view.Table, format)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}
	dir := strings.TrimSpace(opts.OutDir)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}
	path := filepath.Join(dir, doc.Name)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}

	summary := ExportSummary{
		File:     path,
		Bytes:    len(doc.Body),
		Rows:     len(view.Table.Body),
		Caption:  view.Table.Caption,
		Notice:   view.Table.Notice,
		Warnings: view.Table.Warnings,
	}
	if opts.JSONOutput {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "export: encode summary: %v\n", err)
			return 1
		}
		return 0
	}
	_, _ = fmt.Fprintf(opts.Stdout, "%s (%d filas, %d bytes)\n%s\n", summary.File, summary.Rows, summary.Bytes, summary.Caption)
	if summary.Notice != "" {
		_, _ = fmt.Fprintf(opts.Stdout, "Aviso: %s\n", summary.Notice)
	}
	for _, w := range summary.Warnings {
		_, _ = fmt.Fprintf(opts.Stdout, "Advertencia: %s\n", w)
	}
	return 0
}
