package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNotLoaded is returned when a report is read before any fetch succeeded.
var ErrNotLoaded = errors.New("reporting: report not loaded")

// State is the lifecycle of a report view.
type State string

const (
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateFiltering State = "filtering"
)

// Fetcher loads the full row set of a report.
type Fetcher[R any] func(ctx context.Context) ([]R, error)

// Notice is a non-blocking message shown next to the report.
type Notice struct {
	Message string    `json:"mensaje"`
	Detail  string    `json:"detalle,omitempty"`
	At      time.Time `json:"fecha"`
}

// Snapshot is an atomically published view of a report.
type Snapshot[R any, W any] struct {
	Projection[R, W]
	State    State     `json:"estado"`
	Notice   *Notice   `json:"aviso,omitempty"`
	Loaded   bool      `json:"cargado"`
	LoadedAt time.Time `json:"actualizado"`
}

// Config wires a ViewModel.
type Config[R any, W any] struct {
	// Report names the view in logs and metrics.
	Report string
	// FetchError is the notice shown when a fetch fails.
	FetchError string
	Pipeline   Pipeline[R, W]
	Fetch      Fetcher[R]
	Logger     *slog.Logger
	Metrics    *Metrics
	Now        func() time.Time
}

type dataset[R any] struct {
	rows     []R
	loadedAt time.Time
}

// ViewModel holds the last good row set of a report and the projection for
// the selected window. The row set is only ever replaced whole; a failed
// fetch keeps it and records a Notice instead.
type ViewModel[R any, W any] struct {
	cfg Config[R, W]

	mu      sync.Mutex
	window  W
	notice  *Notice
	applied uint64

	generation atomic.Uint64
	data       atomic.Pointer[dataset[R]]
	snapshot   atomic.Pointer[Snapshot[R, W]]
}

// NewViewModel builds a ViewModel in the Loading state.
func NewViewModel[R any, W any](cfg Config[R, W]) *ViewModel[R, W] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.FetchError == "" {
		cfg.FetchError = "Error al obtener " + cfg.Report
	}
	vm := &ViewModel[R, W]{cfg: cfg}
	vm.publishLocked(StateLoading)
	return vm
}

// Load fetches the row set and republishes the projection for the selected
// window. Responses older than an already applied one are discarded.
func (vm *ViewModel[R, W]) Load(ctx context.Context) error {
	gen := vm.generation.Add(1)
	rows, err := vm.cfg.Fetch(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen < vm.applied {
		vm.cfg.Logger.Debug("discard stale report fetch",
			slog.String("report", vm.cfg.Report),
			slog.Uint64("generation", gen),
			slog.Uint64("applied", vm.applied))
		return nil
	}
	vm.applied = gen
	vm.cfg.Metrics.fetched(vm.cfg.Report, err, len(rows))
	if err != nil {
		vm.notice = &Notice{Message: vm.cfg.FetchError, Detail: err.Error(), At: vm.cfg.Now()}
		vm.cfg.Logger.Warn("report fetch failed",
			slog.String("report", vm.cfg.Report),
			slog.Any("error", err))
		vm.publishLocked(vm.settledState())
		return fmt.Errorf("reporting: load %s: %w", vm.cfg.Report, err)
	}
	if rows == nil {
		rows = []R{}
	}
	vm.data.Store(&dataset[R]{rows: rows, loadedAt: vm.cfg.Now()})
	vm.notice = nil
	vm.publishLocked(vm.settledState())
	return nil
}

// SetWindow selects a window and recomputes the projection.
func (vm *ViewModel[R, W]) SetWindow(window W) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.window = window
	if vm.data.Load() == nil {
		vm.publishLocked(vm.settledState())
		return
	}
	if current := vm.snapshot.Load(); current != nil {
		filtering := *current
		filtering.State = StateFiltering
		vm.snapshot.Store(&filtering)
	}
	vm.publishLocked(vm.settledState())
}

// Window returns the selected window.
func (vm *ViewModel[R, W]) Window() W {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.window
}

// Snapshot returns the published view for the selected window.
func (vm *ViewModel[R, W]) Snapshot() Snapshot[R, W] {
	return *vm.snapshot.Load()
}

// Project derives the view for an arbitrary window from the last good row
// set without changing the selected window. It returns ErrNotLoaded together
// with the current notice when no fetch has succeeded yet.
func (vm *ViewModel[R, W]) Project(window W) (Snapshot[R, W], error) {
	current := vm.snapshot.Load()
	data := vm.data.Load()
	if data == nil {
		out := *current
		out.Window = window
		return out, ErrNotLoaded
	}
	out := *current
	out.Projection = vm.project(data.rows, window)
	return out, nil
}

func (vm *ViewModel[R, W]) project(rows []R, window W) Projection[R, W] {
	start := time.Now()
	p := vm.cfg.Pipeline.Project(rows, window)
	vm.cfg.Metrics.projected(vm.cfg.Report, time.Since(start))
	return p
}

// settledState is Loading until a fetch has either succeeded or failed.
func (vm *ViewModel[R, W]) settledState() State {
	if vm.data.Load() == nil && vm.notice == nil {
		return StateLoading
	}
	return StateReady
}

// publishLocked recomputes the projection for the selected window. Callers
// hold mu, except NewViewModel before the value escapes.
func (vm *ViewModel[R, W]) publishLocked(state State) {
	snap := &Snapshot[R, W]{State: state, Notice: vm.notice}
	if data := vm.data.Load(); data != nil {
		snap.Projection = vm.project(data.rows, vm.window)
		snap.Loaded = true
		snap.LoadedAt = data.loadedAt
	} else {
		snap.Projection = Projection[R, W]{Rows: []R{}, Totals: Fold([]R(nil), vm.cfg.Pipeline.Fields), Window: vm.window}
	}
	vm.snapshot.Store(snap)
}
