// Package transactions serves the sales and purchases listings and the draft
// checks behind their entry forms.
package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/negocios/consola/internal/money"
	"github.com/negocios/consola/internal/records"
	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/internal/store"
)

// ErrUnknownKind is returned for a transaction kind other than venta or compra.
var ErrUnknownKind = errors.New("transactions: unknown kind")

// Line is a transaction as listed: counterparty and account resolved to their
// labels, amounts formatted.
type Line struct {
	ID       string `json:"numeroTransaccion"`
	PartyKey string `json:"contraparteId"`
	Party    string `json:"contraparte"`
	Date     string `json:"fecha"`
	Time     string `json:"hora"`
	Subtotal string `json:"subtotal"`
	Total    string `json:"total"`
	Account  string `json:"cuenta"`
}

// Listing is the label-resolved history of one transaction kind.
type Listing struct {
	Kind     records.Kind `json:"tipo"`
	Lines    []Line       `json:"filas"`
	Notice   string       `json:"aviso,omitempty"`
	Warnings []string     `json:"advertencias,omitempty"`
}

// Service reads transactions from the record store.
type Service struct {
	src      store.Source
	loc      *time.Location
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService constructs a Service. A nil location means time.Local.
func NewService(src store.Source, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, loc: loc, logger: logger, validate: newValidator()}
}

// List fetches the transactions of kind with their references. Reference
// lists that fail to load leave raw keys in place; a failed transaction fetch
// returns an empty listing carrying a notice.
func (s *Service) List(ctx context.Context, kind records.Kind) (Listing, error) {
	out := Listing{Kind: kind, Lines: []Line{}}
	refs, refErr := store.LoadReferences(ctx, s.src)
	if refErr != nil {
		s.logger.Warn("load references", slog.String("kind", string(kind)), slog.Any("error", refErr))
	}
	switch kind {
	case records.KindSale:
		sales, err := s.src.Sales(ctx)
		if err != nil {
			out.Notice = "Error al obtener ventas"
			return out, fmt.Errorf("transactions: list ventas: %w", err)
		}
		out.Lines = SaleLines(sales, refs, s.loc)
		for _, sale := range sales {
			if w, ok := mismatch(sale.ID, sale.Subtotal, sale.Total); ok {
				out.Warnings = append(out.Warnings, w)
			}
		}
	case records.KindPurchase:
		purchases, err := s.src.Purchases(ctx)
		if err != nil {
			out.Notice = "Error al obtener compras"
			return out, fmt.Errorf("transactions: list compras: %w", err)
		}
		out.Lines = PurchaseLines(purchases, refs, s.loc)
		for _, p := range purchases {
			if w, ok := mismatch(p.ID, p.Subtotal, p.Total); ok {
				out.Warnings = append(out.Warnings, w)
			}
		}
	default:
		return out, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return out, nil
}

// SaleLines resolves sales against refs.
func SaleLines(sales []records.Sale, refs records.References, loc *time.Location) []Line {
	lines := make([]Line, 0, len(sales))
	for _, sale := range sales {
		lines = append(lines, Line{
			ID:       sale.ID.String(),
			PartyKey: sale.Client.String(),
			Party:    reporting.ClientLabel(sale.Client, refs.Clients),
			Date:     reporting.DisplayDate(sale.Date, loc),
			Time:     sale.Time,
			Subtotal: reporting.FormatCurrency(sale.Subtotal),
			Total:    reporting.FormatCurrency(sale.Total),
			Account:  reporting.AccountLabel(sale.Account, refs.Accounts),
		})
	}
	return lines
}

// PurchaseLines resolves purchases against refs.
func PurchaseLines(purchases []records.Purchase, refs records.References, loc *time.Location) []Line {
	lines := make([]Line, 0, len(purchases))
	for _, p := range purchases {
		lines = append(lines, Line{
			ID:       p.ID.String(),
			PartyKey: p.Supplier.String(),
			Party:    reporting.SupplierLabel(p.Supplier, refs.Suppliers),
			Date:     reporting.DisplayDate(p.Date, loc),
			Time:     p.Time,
			Subtotal: reporting.FormatCurrency(p.Subtotal),
			Total:    reporting.FormatCurrency(p.Total),
			Account:  reporting.AccountLabel(p.Account, refs.Accounts),
		})
	}
	return lines
}

// mismatch reports a stored total that differs from the one derived from its
// subtotal. The stored value is still what gets listed.
func mismatch(id records.Key, subtotal, total money.Amount) (string, bool) {
	if !subtotal.Valid || !total.Valid {
		return "", false
	}
	want := reporting.ComputeTotal(subtotal.Value)
	if total.Value.Equal(want) {
		return "", false
	}
	return fmt.Sprintf("transacción %s: total %s no coincide con el calculado %s", id, total, want.StringFixed(money.Places)), true
}
