package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/negocios/consola/internal/records"
)

var (
	// ErrUnknownReport is returned for a Kind other than diario or mensual.
	ErrUnknownReport = errors.New("reporting: unknown report")
	// ErrInvalidWindow is returned when a day or month parameter cannot be parsed.
	ErrInvalidWindow = errors.New("reporting: invalid window")
)

// ParseKind validates a report name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownReport, s)
	}
	return k, nil
}

// View is a report projected for one window together with its rendered table.
type View struct {
	// Data is the Snapshot for the report's row and window types.
	Data     any
	Table    Table
	Loaded   bool
	LoadedAt time.Time
}

// Reports bundles both report views with the account list the daily table
// resolves labels from.
type Reports struct {
	Daily    *ViewModel[DailyRow, Date]
	Monthly  *ViewModel[MonthlyRow, Month]
	Accounts func(ctx context.Context) ([]records.Account, error)
	Location *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

// Options configures NewReports.
type Options struct {
	Location *time.Location
	Logger   *slog.Logger
	Metrics  *Metrics
	Now      func() time.Time
}

// NewReports builds the daily and monthly view models over their fetchers.
func NewReports(daily Fetcher[DailyRow], monthly Fetcher[MonthlyRow], accounts func(context.Context) ([]records.Account, error), opts Options) *Reports {
	r := &Reports{Accounts: accounts, Location: opts.Location, Logger: opts.Logger, Now: opts.Now}
	r.Daily = NewViewModel(Config[DailyRow, Date]{
		Report:     "informe diario",
		FetchError: "Error al obtener informe diario",
		Pipeline:   DailyPipeline(r.location()),
		Fetch:      daily,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		Now:        opts.Now,
	})
	r.Monthly = NewViewModel(Config[MonthlyRow, Month]{
		Report:     "informe mensual",
		FetchError: "Error al obtener informe mensual",
		Pipeline:   MonthlyPipeline(r.location()),
		Fetch:      monthly,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		Now:        opts.Now,
	})
	return r
}

// Load fetches both reports concurrently. A failure of one does not stop the
// other; the errors are joined.
func (r *Reports) Load(ctx context.Context) error {
	var dailyErr, monthlyErr error
	var g errgroup.Group
	g.Go(func() error {
		dailyErr = r.Daily.Load(ctx)
		return nil
	})
	g.Go(func() error {
		monthlyErr = r.Monthly.Load(ctx)
		return nil
	})
	_ = g.Wait()
	return errors.Join(dailyErr, monthlyErr)
}

// ValidateWindow checks a window parameter without projecting anything.
func ValidateWindow(kind Kind, window string) error {
	var err error
	switch kind {
	case KindDaily:
		_, err = ParseDay(window)
	case KindMonthly:
		_, err = ParseMonth(window)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReport, kind)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	return nil
}

// Reload refetches one report.
func (r *Reports) Reload(ctx context.Context, kind Kind) error {
	switch kind {
	case KindDaily:
		return r.Daily.Load(ctx)
	case KindMonthly:
		return r.Monthly.Load(ctx)
	}
	return fmt.Errorf("%w: %q", ErrUnknownReport, kind)
}

// View projects kind for window without changing the selected window of the
// view model. window is YYYY-MM-DD for the daily report and YYYY-MM for the
// monthly one; empty means every row. The returned View carries the current
// notice even when the error is ErrNotLoaded.
func (r *Reports) View(ctx context.Context, kind Kind, window string) (View, error) {
	switch kind {
	case KindDaily:
		day, err := ParseDay(window)
		if err != nil {
			return View{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
		}
		snap, err := r.Daily.Project(day)
		return View{
			Data:     snap,
			Table:    RenderDaily(snap, r.accounts(ctx), r.location(), r.now()),
			Loaded:   snap.Loaded,
			LoadedAt: snap.LoadedAt,
		}, err
	case KindMonthly:
		month, err := ParseMonth(window)
		if err != nil {
			return View{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
		}
		snap, err := r.Monthly.Project(month)
		return View{
			Data:     snap,
			Table:    RenderMonthly(snap, r.location(), r.now()),
			Loaded:   snap.Loaded,
			LoadedAt: snap.LoadedAt,
		}, err
	}
	return View{}, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
}

// accounts falls back to no labels when the account list cannot be loaded;
// the table then shows raw account numbers.
func (r *Reports) accounts(ctx context.Context) []records.Account {
	if r.Accounts == nil {
		return nil
	}
	accounts, err := r.Accounts(ctx)
	if err != nil {
		r.logger().Warn("load accounts for labels", slog.Any("error", err))
	}
	return accounts
}

func (r *Reports) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

func (r *Reports) now() time.Time {
	if r.Now == nil {
		return time.Now().In(r.location())
	}
	return r.Now()
}

func (r *Reports) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
