package reporting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/negocios/consola/internal/money"
	"github.com/negocios/consola/internal/records"
)

func newTestReports(daily Fetcher[DailyRow], monthly Fetcher[MonthlyRow], accounts func(context.Context) ([]records.Account, error)) *Reports {
	return NewReports(daily, monthly, accounts, Options{
		Location: time.UTC,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) },
	})
}

func monthlyFeed(ctx context.Context) ([]MonthlyRow, error) {
	return []MonthlyRow{
		{DayDate: "2024-03-05", Subtotal: money.MustParse("110"), Total: money.MustParse("126.50"), SaleCount: money.FromInt(2)},
		{DayDate: "2024-02-10", Subtotal: money.MustParse("10"), Total: money.MustParse("11.50"), PurchaseCount: money.FromInt(1)},
	}, nil
}

func TestReportsViewDaily(t *testing.T) {
	feed := &stubFeed{rows: dailyFixture()}
	accounts := func(context.Context) ([]records.Account, error) {
		return []records.Account{{Number: "123456789012345", AssociateName: "Ana Pérez"}}, nil
	}
	reports := newTestReports(feed.fetch, monthlyFeed, accounts)
	if err := reports.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	view, err := reports.View(context.Background(), KindDaily, "2024-03-05")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	snap, ok := view.Data.(Snapshot[DailyRow, Date])
	if !ok {
		t.Fatalf("unexpected data type %T", view.Data)
	}
	if len(snap.Rows) != 2 {
		t.Fatalf("expected 2 rows on 2024-03-05, got %d", len(snap.Rows))
	}
	if view.Table.Caption != "Total del día: $126.50" {
		t.Fatalf("unexpected caption %q", view.Table.Caption)
	}
	if view.Table.Body[0][3] != "Ana Pérez" {
		t.Fatalf("account label not resolved: %q", view.Table.Body[0][3])
	}
	if reports.Daily.Window() != (Date{}) {
		t.Fatalf("view must not change the selected window")
	}
}

func TestReportsViewMonthly(t *testing.T) {
	feed := &stubFeed{}
	reports := newTestReports(feed.fetch, monthlyFeed, nil)
	if err := reports.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	view, err := reports.View(context.Background(), KindMonthly, "2024-03")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Table.Caption != "Total del mes: $126.50" {
		t.Fatalf("unexpected caption %q", view.Table.Caption)
	}
	if len(view.Table.Body) != 1 || view.Table.Body[0][0] != "05/03/2024" {
		t.Fatalf("unexpected body %v", view.Table.Body)
	}
}

func TestReportsViewAccountsFailureShowsRawNumbers(t *testing.T) {
	feed := &stubFeed{rows: dailyFixture()}
	accounts := func(context.Context) ([]records.Account, error) { return nil, errors.New("cuentas caídas") }
	reports := newTestReports(feed.fetch, monthlyFeed, accounts)
	if err := reports.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	view, err := reports.View(context.Background(), KindDaily, "")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Table.Body[0][3] != "123456789012345" {
		t.Fatalf("expected raw account number, got %q", view.Table.Body[0][3])
	}
}

func TestReportsLoadJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	feed := &stubFeed{err: boom}
	reports := newTestReports(feed.fetch, monthlyFeed, nil)
	err := reports.Load(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected daily error, got %v", err)
	}
	if !reports.Monthly.Snapshot().Loaded {
		t.Fatalf("monthly must load even though daily failed")
	}
	view, err := reports.View(context.Background(), KindDaily, "")
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if view.Table.Notice != "Error al obtener informe diario" {
		t.Fatalf("notice missing from view, got %q", view.Table.Notice)
	}
}

func TestReportsRejectsBadInput(t *testing.T) {
	reports := newTestReports((&stubFeed{}).fetch, monthlyFeed, nil)
	if _, err := reports.View(context.Background(), KindDaily, "05/03/2024"); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if _, err := reports.View(context.Background(), Kind("anual"), ""); !errors.Is(err, ErrUnknownReport) {
		t.Fatalf("expected ErrUnknownReport, got %v", err)
	}
	if err := reports.Reload(context.Background(), Kind("anual")); !errors.Is(err, ErrUnknownReport) {
		t.Fatalf("expected ErrUnknownReport, got %v", err)
	}
	if _, err := ParseKind("mensual"); err != nil {
		t.Fatalf("parse kind: %v", err)
	}
}

func TestValidateWindow(t *testing.T) {
	if err := ValidateWindow(KindDaily, "2024-03-05"); err != nil {
		t.Fatalf("valid day rejected: %v", err)
	}
	if err := ValidateWindow(KindMonthly, ""); err != nil {
		t.Fatalf("empty window rejected: %v", err)
	}
	if err := ValidateWindow(KindMonthly, "2024-3"); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if err := ValidateWindow(Kind("x"), ""); !errors.Is(err, ErrUnknownReport) {
		t.Fatalf("expected ErrUnknownReport, got %v", err)
	}
}
