package reporting

import (
	"time"

	"github.com/negocios/consola/internal/records"
)

// Footer is the totals row of a rendered table. Label spans the first Span
// columns; Cells fill the remaining ones.
type Footer struct {
	Label string
	Span  int
	Cells []string
}

// Table is a report as displayed: every cell already formatted. Exports read
// this, never the raw rows.
type Table struct {
	Kind        Kind
	Title       string
	Caption     string
	Header      []string
	Body        [][]string
	Footer      Footer
	Notice      string
	Warnings    []string
	GeneratedAt time.Time
}

// FileName is the deterministic export name for ext.
func (t Table) FileName(ext string) string {
	return t.Kind.FileBase() + "." + ext
}

var (
	dailyHeader = []string{
		"Número de Transacción", "Tipo de Transacción", "Fecha", "Cuenta",
		"Ingreso", "Egreso", "Subtotal", "Total",
	}
	monthlyHeader = []string{
		"Fecha", "Subtotal", "Total", "Cantidad de Ventas", "Cantidad de Compras",
	}
)

// RenderDaily formats a daily snapshot. Account numbers are replaced by the
// holder name when the account is known.
func RenderDaily(s Snapshot[DailyRow, Date], accounts []records.Account, loc *time.Location, now time.Time) Table {
	body := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		body = append(body, []string{
			row.TransactionID.String(),
			string(row.TransactionType),
			DisplayDate(row.Date, loc),
			AccountLabel(row.Account, accounts),
			FormatCurrency(row.Income),
			FormatCurrency(row.Expense),
			FormatCurrency(row.Subtotal),
			FormatCurrency(row.Total),
		})
	}
	scope := "general"
	if !s.Window.IsZero() {
		scope = "del día"
	}
	return Table{
		Kind:    KindDaily,
		Title:   "Informe Diario",
		Caption: "Total " + scope + ": " + FormatCurrency(s.Totals.Get(FieldTotal)),
		Header:  dailyHeader,
		Body:    body,
		Footer: Footer{
			Label: "Totales",
			Span:  4,
			Cells: []string{
				FormatCurrency(s.Totals.Get(FieldIncome)),
				FormatCurrency(s.Totals.Get(FieldExpense)),
				FormatCurrency(s.Totals.Get(FieldSubtotal)),
				FormatCurrency(s.Totals.Get(FieldTotal)),
			},
		},
		Notice:      noticeText(s.Notice),
		Warnings:    s.Warnings,
		GeneratedAt: now,
	}
}

// RenderMonthly formats a monthly snapshot.
func RenderMonthly(s Snapshot[MonthlyRow, Month], loc *time.Location, now time.Time) Table {
	body := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		body = append(body, []string{
			DisplayDate(row.DayDate, loc),
			FormatCurrency(row.Subtotal),
			FormatCurrency(row.Total),
			FormatCount(row.SaleCount),
			FormatCount(row.PurchaseCount),
		})
	}
	scope := "general"
	if !s.Window.IsZero() {
		scope = "del mes"
	}
	return Table{
		Kind:    KindMonthly,
		Title:   "Informe Mensual",
		Caption: "Total " + scope + ": " + FormatCurrency(s.Totals.Get(FieldTotal)),
		Header:  monthlyHeader,
		Body:    body,
		Footer: Footer{
			Label: "Totales",
			Span:  1,
			Cells: []string{
				FormatCurrency(s.Totals.Get(FieldSubtotal)),
				FormatCurrency(s.Totals.Get(FieldTotal)),
				FormatCount(s.Totals.Get(FieldSaleCount)),
				FormatCount(s.Totals.Get(FieldPurchaseCount)),
			},
		},
		Notice:      noticeText(s.Notice),
		GeneratedAt: now,
	}
}

func noticeText(n *Notice) string {
	if n == nil {
		return ""
	}
	return n.Message
}
