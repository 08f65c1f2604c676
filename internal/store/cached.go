package store

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/negocios/consola/internal/records"
	"github.com/negocios/consola/internal/reporting"
)

// Cached is a Source that serves collections from a Cache and collapses
// concurrent fetches of the same collection into one upstream request.
type Cached struct {
	src    Source
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewCached wraps src.
func NewCached(src Source, cache *Cache, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{src: src, cache: cache, logger: logger}
}

// Invalidate drops every cached collection.
func (c *Cached) Invalidate(ctx context.Context) error {
	_, err := c.cache.Bump(ctx)
	return err
}

func (c *Cached) DailyReport(ctx context.Context) ([]reporting.DailyRow, error) {
	return fetchCached(ctx, c, "informe_diario", c.src.DailyReport)
}

func (c *Cached) MonthlyReport(ctx context.Context) ([]reporting.MonthlyRow, error) {
	return fetchCached(ctx, c, "informe_mensual", c.src.MonthlyReport)
}

func (c *Cached) Accounts(ctx context.Context) ([]records.Account, error) {
	return fetchCached(ctx, c, "cuentas", c.src.Accounts)
}

func (c *Cached) Clients(ctx context.Context) ([]records.Client, error) {
	return fetchCached(ctx, c, "clientes", c.src.Clients)
}

func (c *Cached) Suppliers(ctx context.Context) ([]records.Supplier, error) {
	return fetchCached(ctx, c, "proveedores", c.src.Suppliers)
}

func (c *Cached) Sales(ctx context.Context) ([]records.Sale, error) {
	return fetchCached(ctx, c, "ventas", c.src.Sales)
}

func (c *Cached) Purchases(ctx context.Context) ([]records.Purchase, error) {
	return fetchCached(ctx, c, "compras", c.src.Purchases)
}

func fetchCached[T any](ctx context.Context, c *Cached, collection string, load func(context.Context) ([]T, error)) ([]T, error) {
	key, err := c.cache.BuildKey(ctx, "consola", collection)
	if err != nil {
		c.logger.Warn("cache version unavailable", slog.String("collection", collection), slog.Any("error", err))
		return load(ctx)
	}
	// The shared load outlives any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	resultChan := c.group.DoChan(key, func() (any, error) {
		var out []T
		err := c.cache.FetchJSON(shared, key, &out, func(ctx context.Context) (any, error) {
			return load(ctx)
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	}
}

var _ Source = (*Cached)(nil)
