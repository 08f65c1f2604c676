package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/negocios/consola/internal/export"
	"github.com/negocios/consola/internal/platform/cache"
	"github.com/negocios/consola/internal/platform/db"
	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/internal/store"
	"github.com/negocios/consola/internal/store/httpstore"
	"github.com/negocios/consola/internal/store/pgstore"
)

// Backend is the record store as seen by the console: the configured source
// behind the Redis cache.
type Backend struct {
	Source *store.Cached
	Cache  *store.Cache
	Redis  *redis.Client

	closers []func()
}

// OpenBackend connects the configured store backend and the cache. Redis
// being down only disables caching; the store backend must be reachable to
// be constructed.
func OpenBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}
	var src store.Source
	switch cfg.StoreBackend {
	case StoreBackendPostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		src = pgstore.New(pool)
	default:
		client, err := httpstore.New(cfg.StoreURL, cfg.StoreTimeout)
		if err != nil {
			return nil, err
		}
		src = client
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		b.Redis = redisClient
		b.closers = append(b.closers, func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		})
	}
	b.Cache = store.NewCache(b.Redis, cfg.CacheTTL, logger)
	b.Source = store.NewCached(src, b.Cache, logger)
	logger.Info("record store ready", slog.String("backend", cfg.StoreBackend), slog.Bool("cache", b.Redis != nil))
	return b, nil
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// NewReports builds the report views over the backend. reg receives the
// report metrics; nil means the default registerer.
func NewReports(b *Backend, cfg *Config, logger *slog.Logger, reg prometheus.Registerer) (*reporting.Reports, error) {
	metrics, err := reporting.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("report metrics: %w", err)
	}
	return reporting.NewReports(b.Source.DailyReport, b.Source.MonthlyReport, b.Source.Accounts, reporting.Options{
		Location: cfg.Location(),
		Logger:   logger,
		Metrics:  metrics,
	}), nil
}

// NewExporter builds the exporter, with PDF output through Gotenberg when
// GOTENBERG_URL is set.
func NewExporter(ctx context.Context, cfg *Config, logger *slog.Logger) (*export.Exporter, error) {
	var pdf export.PDFRenderer
	if cfg.GotenbergURL != "" {
		client, err := export.NewGotenberg(cfg.GotenbergURL)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			logger.Warn("gotenberg ping", slog.Any("error", err))
		}
		pdf = client
	}
	return export.NewExporter(pdf, logger)
}
