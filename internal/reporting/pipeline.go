package reporting

import (
	"fmt"
	"time"
)

// Pipeline derives the visible rows and totals of a report for a window.
type Pipeline[R any, W any] struct {
	Filter func(rows []R, window W) []R
	Fields []FieldSpec[R]
	// Check optionally reports rows whose stored values disagree with each
	// other. Rows are never rewritten.
	Check func(rows []R) []string
}

// Projection is the derived view of a report for one window.
type Projection[R any, W any] struct {
	Rows     []R      `json:"filas"`
	Totals   Totals   `json:"totales"`
	Window   W        `json:"ventana"`
	Warnings []string `json:"advertencias,omitempty"`
}

// Project filters rows by window and folds the result. It never mutates rows.
func (p Pipeline[R, W]) Project(rows []R, window W) Projection[R, W] {
	filtered := p.Filter(rows, window)
	if filtered == nil {
		filtered = []R{}
	}
	out := Projection[R, W]{
		Rows:   filtered,
		Totals: Fold(filtered, p.Fields),
		Window: window,
	}
	if p.Check != nil {
		out.Warnings = p.Check(filtered)
	}
	return out
}

// DailyPipeline filters daily rows by calendar day in loc.
func DailyPipeline(loc *time.Location) Pipeline[DailyRow, Date] {
	return Pipeline[DailyRow, Date]{
		Filter: func(rows []DailyRow, day Date) []DailyRow {
			return FilterByDay(rows, day, loc, dailyDate)
		},
		Fields: DailyFields,
		Check:  CheckDailyTotals,
	}
}

// MonthlyPipeline filters monthly buckets by calendar month in loc.
func MonthlyPipeline(loc *time.Location) Pipeline[MonthlyRow, Month] {
	return Pipeline[MonthlyRow, Month]{
		Filter: func(rows []MonthlyRow, month Month) []MonthlyRow {
			return FilterByMonth(rows, month, loc, monthlyDate)
		},
		Fields: MonthlyFields,
	}
}

// CheckDailyTotals lists the transactions whose stored total differs from
// the total derived from their subtotal.
func CheckDailyTotals(rows []DailyRow) []string {
	var warnings []string
	for _, row := range rows {
		if !row.Subtotal.Valid || !row.Total.Valid {
			continue
		}
		want := ComputeTotal(row.Subtotal.Value)
		if !row.Total.Value.Equal(want) {
			warnings = append(warnings, fmt.Sprintf("transacción %s: total %s no coincide con subtotal %s + %s%% IVA (%s)",
				transactionLabel(row), row.Total, row.Subtotal, TaxRate.Shift(2).String(), want.StringFixed(2)))
		}
	}
	return warnings
}

func transactionLabel(row DailyRow) string {
	if row.TransactionID.IsZero() {
		return "sin número"
	}
	return row.TransactionID.String()
}
