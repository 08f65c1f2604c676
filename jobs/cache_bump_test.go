package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/negocios/consola/internal/store"
)

func TestCacheBumpJobIncrementsVersion(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := store.NewCache(client, time.Minute, logger)

	ctx := context.Background()
	before, err := cache.Version(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	job := &CacheBumpJob{Cache: cache, Logger: logger}
	if err := job.Handle(ctx, NewCacheBumpTask()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	after, err := cache.Version(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if after != before+1 {
		t.Fatalf("expected version %d, got %d", before+1, after)
	}
}

func TestCacheBumpJobRequiresCache(t *testing.T) {
	var job *CacheBumpJob
	if err := job.Handle(context.Background(), NewCacheBumpTask()); err == nil {
		t.Fatal("expected configuration error")
	}
}
