package reporting

import (
	"github.com/negocios/consola/internal/money"
	"github.com/negocios/consola/internal/records"
)

// Kind identifies one of the two report views.
type Kind string

const (
	KindDaily   Kind = "diario"
	KindMonthly Kind = "mensual"
)

// FileBase is the export file name without extension.
func (k Kind) FileBase() string {
	return "informe_" + string(k)
}

// Valid reports whether k names a known report.
func (k Kind) Valid() bool {
	return k == KindDaily || k == KindMonthly
}

// DailyRow is one transaction of the daily report feed. Income and expense
// are expected to be mutually exclusive but nothing here relies on it.
type DailyRow struct {
	TransactionID   records.Key  `json:"numeroTransaccion"`
	TransactionType records.Kind `json:"tipoTransaccion"`
	Date            string       `json:"fecha"`
	Account         records.Key  `json:"cuenta"`
	Income          money.Amount `json:"ingreso"`
	Expense         money.Amount `json:"egreso"`
	Subtotal        money.Amount `json:"subtotal"`
	Total           money.Amount `json:"total"`
}

// MonthlyRow is one pre-bucketed day of the monthly report feed.
type MonthlyRow struct {
	DayDate       string       `json:"fechaDia"`
	Subtotal      money.Amount `json:"subtotal"`
	Total         money.Amount `json:"total"`
	SaleCount     money.Amount `json:"cantidadVentas"`
	PurchaseCount money.Amount `json:"cantidadCompras"`
}

// Column names of the folded totals.
const (
	FieldIncome        = "ingreso"
	FieldExpense       = "egreso"
	FieldSubtotal      = "subtotal"
	FieldTotal         = "total"
	FieldSaleCount     = "cantidadVentas"
	FieldPurchaseCount = "cantidadCompras"
)

// DailyFields are the totals of the daily report.
var DailyFields = []FieldSpec[DailyRow]{
	{Name: FieldIncome, Value: func(r DailyRow) money.Amount { return r.Income }},
	{Name: FieldExpense, Value: func(r DailyRow) money.Amount { return r.Expense }},
	{Name: FieldSubtotal, Value: func(r DailyRow) money.Amount { return r.Subtotal }},
	{Name: FieldTotal, Value: func(r DailyRow) money.Amount { return r.Total }},
}

// MonthlyFields are the totals of the monthly report.
var MonthlyFields = []FieldSpec[MonthlyRow]{
	{Name: FieldSubtotal, Value: func(r MonthlyRow) money.Amount { return r.Subtotal }},
	{Name: FieldTotal, Value: func(r MonthlyRow) money.Amount { return r.Total }},
	{Name: FieldSaleCount, Value: func(r MonthlyRow) money.Amount { return r.SaleCount }},
	{Name: FieldPurchaseCount, Value: func(r MonthlyRow) money.Amount { return r.PurchaseCount }},
}

func dailyDate(r DailyRow) string     { return r.Date }
func monthlyDate(r MonthlyRow) string { return r.DayDate }
