package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/negocios/consola/internal/export"
	"github.com/negocios/consola/internal/platform/httpx"
	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/internal/view"
)

// Reports is the subset of reporting.Reports served over HTTP.
type Reports interface {
	Reload(ctx context.Context, kind reporting.Kind) error
	View(ctx context.Context, kind reporting.Kind, window string) (reporting.View, error)
}

// Exporter renders a table to a downloadable document.
type Exporter interface {
	Export(ctx context.Context, table reporting.Table, format export.Format) (export.Document, error)
}

// ExportQueue queues exports for the worker.
type ExportQueue interface {
	EnqueueReportExport(ctx context.Context, report, window, format string) (string, error)
}

// Invalidator drops cached record-store data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Config wires a Handler.
type Config struct {
	Logger    *slog.Logger
	Reports   Reports
	Exporter  Exporter
	Queue     ExportQueue
	Cache     Invalidator
	Templates *view.Engine
	// ExportsPerMinute limits export requests per client IP. Zero means 10.
	ExportsPerMinute int
}

// Handler serves the daily and monthly reports.
type Handler struct {
	logger    *slog.Logger
	reports   Reports
	exporter  Exporter
	queue     ExportQueue
	cache     Invalidator
	templates *view.Engine
	rateLimit func(http.Handler) http.Handler
}

// NewHandler constructs the report handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Reports == nil {
		return nil, fmt.Errorf("reporting handler: reports required")
	}
	if cfg.Exporter == nil {
		return nil, fmt.Errorf("reporting handler: exporter required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	limit := cfg.ExportsPerMinute
	if limit <= 0 {
		limit = 10
	}
	return &Handler{
		logger:    cfg.Logger,
		reports:   cfg.Reports,
		exporter:  cfg.Exporter,
		queue:     cfg.Queue,
		cache:     cfg.Cache,
		templates: cfg.Templates,
		rateLimit: httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}, nil
}

// MountRoutes registers the report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/informes/{kind}", h.HandleGet)
	r.Post("/informes/{kind}/refresh", h.HandleRefresh)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/informes/{kind}/export.{format}", h.HandleExport)
		r.Post("/informes/{kind}/export/async", h.HandleExportAsync)
	})
}

// HandleGet answers with the projection for the requested window, as JSON or
// as the table page when the client accepts HTML.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	window := r.URL.Query().Get(windowParam(kind))
	v, err := h.reports.View(r.Context(), kind, window)
	h.respondView(w, r, kind, window, v, err)
}

// HandleRefresh drops cached data and refetches the report. A failed fetch
// still answers with the last good data and its notice.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(r.Context()); err != nil {
			h.logger.Warn("invalidate cache", slog.Any("error", err))
		}
	}
	if err := h.reports.Reload(r.Context(), kind); err != nil {
		h.logger.Warn("refresh report", slog.String("report", string(kind)), slog.Any("error", err))
	}
	window := r.URL.Query().Get(windowParam(kind))
	v, err := h.reports.View(r.Context(), kind, window)
	h.respondView(w, r, kind, window, v, err)
}

// HandleExport streams the rendered table for the requested window.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
		return
	}
	v, err := h.reports.View(r.Context(), kind, r.URL.Query().Get(windowParam(kind)))
	if err != nil {
		h.respondError(w, err, v)
		return
	}
	doc, err := h.exporter.Export(r.Context(), v.Table, format)
	if err != nil {
		h.respondError(w, err, v)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

type exportAccepted struct {
	ID     string `json:"id"`
	Estado string `json:"estado"`
	URL    string `json:"url"`
}

// HandleExportAsync queues an export and answers with its job id.
func (h *Handler) HandleExportAsync(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	if h.queue == nil {
		httpx.RespondError(w, fmt.Errorf("%w: export queue not configured", httpx.ErrUnavailable))
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("formato"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	window := r.URL.Query().Get(windowParam(kind))
	if err := reporting.ValidateWindow(kind, window); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	id, err := h.queue.EnqueueReportExport(r.Context(), string(kind), window, string(format))
	if err != nil {
		h.logger.Error("enqueue export", slog.String("report", string(kind)), slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnavailable, err))
		return
	}
	httpx.JSON(w, http.StatusAccepted, exportAccepted{ID: id, Estado: "encolado", URL: "/jobs/" + id})
}

func (h *Handler) kind(w http.ResponseWriter, r *http.Request) (reporting.Kind, bool) {
	kind, err := reporting.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
		return "", false
	}
	return kind, true
}

func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, kind reporting.Kind, window string, v reporting.View, err error) {
	if err != nil && !errors.Is(err, reporting.ErrNotLoaded) {
		h.respondError(w, err, v)
		return
	}
	if wantsHTML(r) && h.templates != nil {
		status := http.StatusOK
		if err != nil {
			status = http.StatusServiceUnavailable
		}
		h.renderPage(w, r, kind, window, v, status)
		return
	}
	if err != nil {
		h.respondError(w, err, v)
		return
	}
	httpx.JSON(w, http.StatusOK, v.Data)
}

// respondError maps reporting and export failures to problem responses.
func (h *Handler) respondError(w http.ResponseWriter, err error, v reporting.View) {
	switch {
	case errors.Is(err, reporting.ErrInvalidWindow):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	case errors.Is(err, reporting.ErrNotLoaded):
		detail := v.Table.Notice
		if detail == "" {
			detail = "el informe aún no se ha cargado"
		}
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUnavailable, detail))
	case errors.Is(err, export.ErrPDFDisabled):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnavailable, err))
	case errors.Is(err, export.ErrRenderTimeout),
		errors.Is(err, export.ErrRenderInvalidResponse),
		errors.Is(err, export.ErrRenderTooSmall):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUpstream, err))
	default:
		h.logger.Error("report request", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

type exportLink struct {
	Href  string
	Label string
}

type pageData struct {
	Table       reporting.Table
	Window      string
	WindowParam string
	WindowLabel string
	WindowInput string
	Query       string
	Exports     []exportLink
	LoadedAt    time.Time
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, kind reporting.Kind, window string, v reporting.View, status int) {
	param := windowParam(kind)
	data := pageData{
		Table:       v.Table,
		Window:      window,
		WindowParam: param,
		WindowLabel: "Fecha",
		WindowInput: "date",
		LoadedAt:    v.LoadedAt,
	}
	if kind == reporting.KindMonthly {
		data.WindowLabel = "Mes"
		data.WindowInput = "month"
	}
	if window != "" {
		data.Query = "?" + url.Values{param: []string{window}}.Encode()
	}
	base := "/informes/" + string(kind) + "/export."
	data.Exports = []exportLink{
		{Href: base + string(export.FormatPDF), Label: "Exportar PDF"},
		{Href: base + string(export.FormatXLSX), Label: "Exportar Excel"},
		{Href: base + string(export.FormatCSV), Label: "Exportar CSV"},
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/informe.html", view.TemplateData{
		Title:       v.Table.Title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}); err != nil {
		h.logger.Error("render report page", slog.Any("error", err))
	}
}

func windowParam(kind reporting.Kind) string {
	if kind == reporting.KindMonthly {
		return "mes"
	}
	return "fecha"
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
