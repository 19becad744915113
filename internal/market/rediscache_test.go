package market

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	c, err := NewRedisCache("redis://"+mr.Addr(), "", slog.Default())
	if err != nil {
		mr.Close()
		t.Fatalf("NewRedisCache: %v", err)
	}
	return c, mr
}

func TestRedisCacheLiveReadingRoundTrip(t *testing.T) {
	c, mr := setupTestRedisCache(t)
	defer mr.Close()
	defer c.Close()

	ctx := context.Background()
	fetched := time.Date(2026, time.March, 15, 14, 0, 0, 0, time.UTC)
	in := &Reading{
		Kind:      KindGridPrice,
		Source:    "kepco",
		IsLive:    true,
		FetchedAt: fetched,
		Grid:      &GridPrice{PriceKRW: 142.5, Currency: "KRW", TradingVolumeMWh: 310},
	}
	c.Set(ctx, KindGridPrice, in, ReadingTTL)

	out, ok := c.Get(ctx, KindGridPrice)
	if !ok {
		t.Fatal("reading not found after Set")
	}
	if !out.IsLive {
		t.Error("IsLive flag lost in the codec")
	}
	if out.Source != "kepco" {
		t.Errorf("Source = %q, want %q", out.Source, "kepco")
	}
	if !out.FetchedAt.Equal(fetched) {
		t.Errorf("FetchedAt = %v, want %v", out.FetchedAt, fetched)
	}
	if out.Grid == nil || out.Grid.PriceKRW != 142.5 || out.Grid.TradingVolumeMWh != 310 {
		t.Errorf("Grid payload = %+v, want original values", out.Grid)
	}
}

func TestRedisCacheFallbackReadingRoundTrip(t *testing.T) {
	c, mr := setupTestRedisCache(t)
	defer mr.Close()
	defer c.Close()

	ctx := context.Background()
	in := &Reading{
		Kind:      KindExchangeRate,
		Source:    SourceFallback,
		IsLive:    false,
		FetchedAt: time.Date(2026, time.March, 15, 14, 0, 0, 0, time.UTC),
		FX:        &ExchangeRate{KRWPerUnit: 1350},
	}
	c.Set(ctx, KindExchangeRate, in, ReadingTTL)

	out, ok := c.Get(ctx, KindExchangeRate)
	if !ok {
		t.Fatal("reading not found after Set")
	}
	if out.IsLive {
		t.Error("a fallback reading came back marked live")
	}
	if out.Source != SourceFallback {
		t.Errorf("Source = %q, want %q", out.Source, SourceFallback)
	}
	if out.FX == nil || out.FX.KRWPerUnit != 1350 {
		t.Errorf("FX payload = %+v, want original values", out.FX)
	}
}

func TestRedisCacheKindIsolation(t *testing.T) {
	c, mr := setupTestRedisCache(t)
	defer mr.Close()
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, KindGridPrice, &Reading{Kind: KindGridPrice, Source: "kepco", IsLive: true}, ReadingTTL)

	if _, ok := c.Get(ctx, KindFleetTelemetry); ok {
		t.Error("reading leaked across kinds")
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	c, mr := setupTestRedisCache(t)
	defer mr.Close()
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, KindOnChainTVL, &Reading{Kind: KindOnChainTVL, Source: "chain", IsLive: true}, ReadingTTL)

	if _, ok := c.Get(ctx, KindOnChainTVL); !ok {
		t.Fatal("reading should be present inside the TTL window")
	}

	mr.FastForward(31 * time.Second)

	if _, ok := c.Get(ctx, KindOnChainTVL); ok {
		t.Error("expired reading served from Redis")
	}
}

func TestRedisCacheMiss(t *testing.T) {
	c, mr := setupTestRedisCache(t)
	defer mr.Close()
	defer c.Close()

	if _, ok := c.Get(context.Background(), KindGridPrice); ok {
		t.Error("empty cache returned a reading")
	}
}
