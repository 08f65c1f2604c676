package transactions

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negocios/consola/internal/view"
)

func newTestRouter(t *testing.T, src *fakeSource) chi.Router {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, newTestService(src), templates)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func serve(r http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerListsSalesAsJSON(t *testing.T) {
	rec := serve(newTestRouter(t, newSource()), http.MethodGet, "/ventas", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, "venta", string(listing.Kind))
	require.Len(t, listing.Lines, 2)
	assert.Equal(t, "Luis Mora", listing.Lines[0].Party)
	assert.Equal(t, "0102030405", listing.Lines[0].PartyKey)
}

func TestHandlerRendersPurchasesPage(t *testing.T) {
	rec := serve(newTestRouter(t, newSource()), http.MethodGet, "/compras", "", map[string]string{"Accept": "text/html"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "<th>Proveedor</th>")
	assert.Contains(t, body, "Distribuidora Andina")
	assert.Contains(t, body, "$46.00")
}

func TestHandlerListFailure(t *testing.T) {
	src := newSource()
	src.salesErr = errors.New("connection refused")
	r := newTestRouter(t, src)

	rec := serve(r, http.MethodGet, "/ventas", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Error al obtener ventas")

	rec = serve(r, http.MethodGet, "/ventas", "", map[string]string{"Accept": "text/html"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error al obtener ventas")
	assert.Contains(t, rec.Body.String(), "Sin registros")
}

func TestHandlerSaleDraft(t *testing.T) {
	r := newTestRouter(t, newSource())
	payload := `{"cliente":"0102030405","fecha":"2024-03-05","hora":"10:30","subtotal":"100","cuenta":"123456789012345"}`
	rec := serve(r, http.MethodPost, "/ventas/borrador", payload, map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result DraftResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Ready)
	assert.Equal(t, "115.00", result.Total)
	assert.Empty(t, result.Errors)
}

func TestHandlerDraftBlockedOnInvalidSubtotal(t *testing.T) {
	r := newTestRouter(t, newSource())
	payload := `{"proveedor":"1790012345001","fecha":"2024-03-05","hora":"09:15","subtotal":"abc","cuenta":"123456789012345"}`
	rec := serve(r, http.MethodPost, "/compras/borrador", payload, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var result DraftResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Ready)
	assert.Empty(t, result.Total)
	assert.Contains(t, result.Errors, "subtotal")
}

func TestHandlerDraftRejectsMalformedJSON(t *testing.T) {
	rec := serve(newTestRouter(t, newSource()), http.MethodPost, "/ventas/borrador", `{"cliente":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
