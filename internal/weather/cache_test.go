package weather

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"farmlink_backend/platform/logger"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(rdb, 30*time.Minute, logger.New("test")), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key := CacheKey(52.37, 4.89, "2026-09-01")
	want := DayForecast{
		Date:            "2026-09-01",
		WeatherCode:     61,
		TempMaxC:        21.5,
		TempMinC:        14.2,
		PrecipitationMM: 3.4,
		WindSpeedMaxKMH: 18.0,
	}

	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("expected cache miss before Set")
	}

	cache.Set(ctx, key, want)

	got, ok := cache.Get(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after Set")
	}
	if *got != want {
		t.Errorf("got %+v, want %+v", *got, want)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	key := CacheKey(52.37, 4.89, "2026-09-02")
	cache.Set(ctx, key, DayForecast{Date: "2026-09-02"})

	mr.FastForward(31 * time.Minute)

	if _, ok := cache.Get(ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheKeyRoundsCoordinates(t *testing.T) {
	a := CacheKey(52.3701, 4.8899, "2026-09-01")
	b := CacheKey(52.3749, 4.8851, "2026-09-01")
	if a != b {
		t.Errorf("expected nearby coordinates to share a key, got %q and %q", a, b)
	}

	c := CacheKey(53.00, 4.89, "2026-09-01")
	if a == c {
		t.Error("expected distinct coordinates to produce distinct keys")
	}
}

func TestCacheNilClientIsNoop(t *testing.T) {
	cache := NewCache(nil, time.Minute, logger.New("test"))
	ctx := context.Background()

	cache.Set(ctx, "weather:0.00:0.00:2026-09-01", DayForecast{Date: "2026-09-01"})
	if _, ok := cache.Get(ctx, "weather:0.00:0.00:2026-09-01"); ok {
		t.Error("expected nil-client cache to always miss")
	}
}
