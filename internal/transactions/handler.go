package transactions

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/negocios/consola/internal/platform/httpx"
	"github.com/negocios/consola/internal/records"
	"github.com/negocios/consola/internal/view"
)

// Handler wires HTTP endpoints for the sales and purchases screens.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates}
}

// MountRoutes registers transaction routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ventas", h.list(records.KindSale))
	r.Get("/compras", h.list(records.KindPurchase))
	r.Post("/ventas/borrador", h.handleSaleDraft)
	r.Post("/compras/borrador", h.handlePurchaseDraft)
}

type listPageData struct {
	Title       string
	PartyHeader string
	Notice      string
	Warnings    []string
	Lines       []Line
}

func (h *Handler) list(kind records.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := h.service.List(r.Context(), kind)
		status := http.StatusOK
		if err != nil {
			h.logger.Warn("list transactions", slog.String("kind", string(kind)), slog.Any("error", err))
			status = http.StatusServiceUnavailable
		}
		if strings.Contains(r.Header.Get("Accept"), "text/html") && h.templates != nil {
			h.renderList(w, r, kind, listing, status)
			return
		}
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUnavailable, listing.Notice))
			return
		}
		httpx.JSON(w, http.StatusOK, listing)
	}
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, kind records.Kind, listing Listing, status int) {
	data := listPageData{
		Title:       "Ventas",
		PartyHeader: "Cliente",
		Notice:      listing.Notice,
		Warnings:    listing.Warnings,
		Lines:       listing.Lines,
	}
	if kind == records.KindPurchase {
		data.Title = "Compras"
		data.PartyHeader = "Proveedor"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/transacciones.html", view.TemplateData{
		Title:       data.Title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}); err != nil {
		h.logger.Error("render transactions", slog.Any("error", err))
	}
}

func (h *Handler) handleSaleDraft(w http.ResponseWriter, r *http.Request) {
	var form SaleDraft
	if err := httpx.DecodeJSON(w, r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	respondDraft(w, h.service.CheckSale(r.Context(), form))
}

func (h *Handler) handlePurchaseDraft(w http.ResponseWriter, r *http.Request) {
	var form PurchaseDraft
	if err := httpx.DecodeJSON(w, r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	respondDraft(w, h.service.CheckPurchase(r.Context(), form))
}

// respondDraft answers 200 for a submittable draft and 422 otherwise; both
// carry the computed total so the form can display it.
func respondDraft(w http.ResponseWriter, result DraftResult) {
	status := http.StatusOK
	if !result.Ready {
		status = http.StatusUnprocessableEntity
	}
	httpx.JSON(w, status, result)
}
