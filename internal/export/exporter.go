package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/negocios/consola/internal/reporting"
)

// ErrPDFDisabled is returned for PDF exports when no renderer is configured.
var ErrPDFDisabled = errors.New("export: pdf rendering disabled")

// Document is a finished export.
type Document struct {
	Name        string
	ContentType string
	Body        []byte
}

// PDFRenderer converts an HTML page to PDF.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Exporter captures rendered tables. It never reads raw rows, so an export
// always matches what the table displayed.
type Exporter struct {
	pdf    PDFRenderer
	page   *pageTemplate
	logger *slog.Logger
}

// NewExporter wires the exporter. pdf may be nil, which disables PDF output.
func NewExporter(pdf PDFRenderer, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	page, err := newPageTemplate()
	if err != nil {
		return nil, fmt.Errorf("export: parse page template: %w", err)
	}
	return &Exporter{pdf: pdf, page: page, logger: logger}, nil
}

// Export writes table in the requested format.
func (e *Exporter) Export(ctx context.Context, table reporting.Table, format Format) (Document, error) {
	if e == nil {
		return Document{}, errors.New("export: exporter not initialised")
	}
	var (
		body []byte
		err  error
	)
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		err = writeTableCSV(&buf, table)
		body = buf.Bytes()
	case FormatXLSX:
		body, err = writeTableXLSX(table)
	case FormatPDF:
		body, err = e.renderPDF(ctx, table)
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		e.logger.Error("export report",
			slog.String("report", string(table.Kind)),
			slog.String("format", string(format)),
			slog.Any("error", err))
		return Document{}, fmt.Errorf("export %s %s: %w", table.Kind, format, err)
	}
	return Document{
		Name:        table.FileName(string(format)),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// HTML renders the print page for table, the same markup sent to the PDF
// renderer.
func (e *Exporter) HTML(table reporting.Table) (string, error) {
	return e.page.render(table)
}

func (e *Exporter) renderPDF(ctx context.Context, table reporting.Table) ([]byte, error) {
	if e.pdf == nil {
		return nil, ErrPDFDisabled
	}
	html, err := e.page.render(table)
	if err != nil {
		return nil, err
	}
	return e.pdf.RenderHTML(ctx, html)
}
