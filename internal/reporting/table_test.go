package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/negocios/consola/internal/money"
	"github.com/negocios/consola/internal/records"
)

func TestRenderDaily(t *testing.T) {
	pipeline := DailyPipeline(time.UTC)
	now := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	accounts := []records.Account{{Number: "123456789012345", AssociateName: "Juan Perez"}}

	all := Snapshot[DailyRow, Date]{Projection: pipeline.Project(dailyFixture(), Date{})}
	table := RenderDaily(all, accounts, time.UTC, now)
	if table.Caption != "Total general: $172.50" {
		t.Fatalf("unexpected caption %q", table.Caption)
	}
	if table.FileName("pdf") != "informe_diario.pdf" {
		t.Fatalf("unexpected file name %q", table.FileName("pdf"))
	}
	first := table.Body[0]
	if first[2] != "05/03/2024" || first[3] != "Juan Perez" || first[4] != "$100.00" || first[5] != "$0.00" {
		t.Fatalf("unexpected first row %v", first)
	}
	if table.Body[2][3] != "" {
		t.Fatalf("blank account must stay blank, got %q", table.Body[2][3])
	}
	if table.Body[3][2] != "no es fecha" {
		t.Fatalf("unparseable dates render verbatim, got %q", table.Body[3][2])
	}
	if table.Footer.Span != 4 || table.Footer.Cells[0] != "$115.00" || table.Footer.Cells[1] != "$40.00" {
		t.Fatalf("unexpected footer %+v", table.Footer)
	}

	day := Snapshot[DailyRow, Date]{Projection: pipeline.Project(dailyFixture(), Date{Year: 2024, Month: time.March, Day: 6})}
	table = RenderDaily(day, nil, time.UTC, now)
	if table.Caption != "Total del día: $46.00" {
		t.Fatalf("unexpected caption %q", table.Caption)
	}
	if table.Body[0][3] != "123456789012345" {
		t.Fatalf("unknown account must fall back to its number, got %q", table.Body[0][3])
	}
}

func TestRenderMonthlyScenario(t *testing.T) {
	rows := []MonthlyRow{
		{DayDate: "2024-01-15", Subtotal: money.MustParse("100"), Total: money.MustParse("115"), SaleCount: money.FromInt(2), PurchaseCount: money.FromInt(1)},
		{DayDate: "2024-01-20", Subtotal: money.MustParse("50"), Total: money.MustParse("57.50"), SaleCount: money.FromInt(1)},
		{DayDate: "2024-02-01", Subtotal: money.MustParse("10"), Total: money.MustParse("11.50"), PurchaseCount: money.FromInt(3)},
	}
	pipeline := MonthlyPipeline(time.UTC)
	jan := pipeline.Project(rows, Month{Year: 2024, Month: time.January})
	if len(jan.Rows) != 2 {
		t.Fatalf("expected 2 January rows, got %d", len(jan.Rows))
	}
	if jan.Totals.Get(FieldSubtotal).StringFixed(2) != "150.00" || jan.Totals.Get(FieldTotal).StringFixed(2) != "172.50" {
		t.Fatalf("unexpected January totals %+v", jan.Totals)
	}
	if jan.Totals.Get(FieldSaleCount).String() != "3" || jan.Totals.Get(FieldPurchaseCount).String() != "1" {
		t.Fatalf("unexpected January counts %+v", jan.Totals)
	}

	table := RenderMonthly(Snapshot[MonthlyRow, Month]{Projection: jan}, time.UTC, time.Now())
	if table.Caption != "Total del mes: $172.50" {
		t.Fatalf("unexpected caption %q", table.Caption)
	}
	if strings.Join(table.Footer.Cells, "|") != "$150.00|$172.50|3|1" {
		t.Fatalf("unexpected footer %v", table.Footer.Cells)
	}
	if table.Body[1][4] != "0" {
		t.Fatalf("missing count renders as 0, got %q", table.Body[1][4])
	}
	if table.FileName("xlsx") != "informe_mensual.xlsx" {
		t.Fatalf("unexpected file name %q", table.FileName("xlsx"))
	}
}

func TestCheckDailyTotalsFlagsInconsistentRows(t *testing.T) {
	rows := []DailyRow{
		{TransactionID: "9", Subtotal: money.MustParse("100"), Total: money.MustParse("120")},
		{TransactionID: "10", Subtotal: money.MustParse("100"), Total: money.MustParse("115")},
		{TransactionID: "11", Subtotal: money.Amount{}, Total: money.MustParse("1")},
	}
	warnings := CheckDailyTotals(rows)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "transacción 9") {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	projected := DailyPipeline(time.UTC).Project(rows, Date{})
	if projected.Totals.Get(FieldTotal).StringFixed(2) != "236.00" {
		t.Fatalf("stored totals must be trusted, got %s", projected.Totals.Get(FieldTotal))
	}
}
