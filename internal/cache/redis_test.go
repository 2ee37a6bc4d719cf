// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// unreachableRedis points at a port nothing listens on.
const unreachableRedis = "redis://127.0.0.1:63999/0"

// newTestRedisCache connects to SALON_TEST_REDIS_URL under a prefix unique to
// the test and removes its keys afterwards. The test is skipped without Redis.
func newTestRedisCache(t *testing.T, prefix string) *RedisCache {
	t.Helper()
	url := os.Getenv("SALON_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: SALON_TEST_REDIS_URL not set")
	}

	if prefix == "" {
		prefix = "salon-test:" + strings.ReplaceAll(t.Name(), "/", "-") + ":"
	}
	c, err := NewRedisCacheFromURL(url, prefix, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisCacheFromURL: %v", err)
	}
	_ = c.Clear(context.Background())
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		_ = c.Close()
	})
	return c
}

func TestRedisCache_ContentKeys(t *testing.T) {
	c := newTestRedisCache(t, "")
	ctx := context.Background()

	mustSet(t, c, KeyServices, `[{"id":1,"title":"Cut"}]`, time.Minute)

	got, err := c.Get(ctx, KeyServices)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[{"id":1,"title":"Cut"}]` {
		t.Errorf("Get = %s", got)
	}
	if has, err := c.Has(ctx, KeyServices); err != nil || !has {
		t.Errorf("Has = %v, %v", has, err)
	}

	if err := c.Delete(ctx, KeyServices); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, KeyServices); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete = %v, want ErrCacheMiss", err)
	}
	if has, _ := c.Has(ctx, KeyGallery); has {
		t.Error("gallery list was never cached")
	}
}

func TestRedisCache_NewReviewDropsEveryReviewsList(t *testing.T) {
	c := newTestRedisCache(t, "")
	ctx := context.Background()

	for _, limit := range []int{1, 3, 20} {
		mustSet(t, c, ReviewsKey(limit), "reviews", time.Minute)
	}
	mustSet(t, c, KeyGallery, "gallery", time.Minute)

	if err := c.DeleteByPrefix(ctx, PrefixReviews); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	for _, limit := range []int{1, 3, 20} {
		if _, err := c.Get(ctx, ReviewsKey(limit)); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("%s should be dropped, got %v", ReviewsKey(limit), err)
		}
	}
	if _, err := c.Get(ctx, KeyGallery); err != nil {
		t.Errorf("gallery list should survive, got %v", err)
	}
}

func TestRedisCache_SitesSharingRedisAreIsolated(t *testing.T) {
	base := "salon-test:" + t.Name()
	downtown := newTestRedisCache(t, base+":downtown:")
	uptown := newTestRedisCache(t, base+":uptown:")
	ctx := context.Background()

	mustSet(t, downtown, ReviewsKey(3), "downtown reviews", time.Minute)
	mustSet(t, uptown, ReviewsKey(3), "uptown reviews", time.Minute)

	if err := downtown.DeleteByPrefix(ctx, PrefixReviews); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	got, err := uptown.Get(ctx, ReviewsKey(3))
	if err != nil || string(got) != "uptown reviews" {
		t.Errorf("uptown Get = %q, %v", got, err)
	}

	if err := uptown.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if items := uptown.Stats().Items; items != 0 {
		t.Errorf("uptown Items after Clear = %d", items)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	c := newTestRedisCache(t, "")
	ctx := context.Background()

	mustSet(t, c, ReviewsKey(3), "short", 100*time.Millisecond)
	mustSet(t, c, KeyServices, "default TTL", 0)

	if _, err := c.Get(ctx, ReviewsKey(3)); err != nil {
		t.Fatalf("fresh entry missing: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	if _, err := c.Get(ctx, ReviewsKey(3)); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry: got %v, want ErrCacheMiss", err)
	}
	if _, err := c.Get(ctx, KeyServices); err != nil {
		t.Errorf("default TTL entry: %v", err)
	}
}

func TestRedisCache_Stats(t *testing.T) {
	c := newTestRedisCache(t, "")
	ctx := context.Background()
	c.ResetStats()

	mustSet(t, c, KeyServices, "services", time.Minute)
	mustSet(t, c, KeyGallery, "gallery", time.Minute)
	_, _ = c.Get(ctx, KeyServices)
	_, _ = c.Get(ctx, KeyGallery)
	_, _ = c.Get(ctx, ReviewsKey(3))

	stats := c.Stats()
	if stats.Sets != 2 || stats.Hits != 2 || stats.Misses != 1 || stats.Items != 2 {
		t.Errorf("Stats = %+v", stats)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Sets != 0 {
		t.Errorf("after ResetStats = %+v", s)
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestRedisCache_Closed(t *testing.T) {
	c := newTestRedisCache(t, "")
	ctx := context.Background()

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := c.Get(ctx, KeyServices); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, KeyServices, nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set = %v, want ErrCacheClosed", err)
	}
	if err := c.DeleteByPrefix(ctx, PrefixReviews); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("DeleteByPrefix = %v, want ErrCacheClosed", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Ping = %v, want ErrCacheClosed", err)
	}
}

func TestNewRedisCacheFromURL_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":       "",
		"not a URL":   "invalid-url",
		"wrong kind":  "http://localhost:6379",
		"unreachable": unreachableRedis,
	}
	for name, url := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewRedisCacheFromURL(url, DefaultPrefix, time.Minute); err == nil {
				t.Errorf("NewRedisCacheFromURL(%q) = nil error", url)
			}
		})
	}
}

func TestNewCacheWithInfo(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		wantErr      bool
		wantFallback bool
	}{
		{
			name: "memory",
			cfg:  Config{Type: CacheBackendMemory, DefaultTTL: time.Minute},
		},
		{
			name: "redis type without url stays in memory",
			cfg:  Config{Type: CacheBackendRedis, DefaultTTL: time.Minute},
		},
		{
			name:         "unreachable redis falls back",
			cfg:          Config{Type: CacheBackendRedis, RedisURL: unreachableRedis, FallbackToMemory: true},
			wantFallback: true,
		},
		{
			name:    "unreachable redis without fallback",
			cfg:     Config{Type: CacheBackendRedis, RedisURL: "redis://:hunter2@127.0.0.1:63999/0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewCacheWithInfo(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if strings.Contains(err.Error(), "hunter2") {
					t.Errorf("error leaks the redis password: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCacheWithInfo: %v", err)
			}
			defer func() { _ = res.Cache.Close() }()

			if res.BackendType != CacheBackendMemory {
				t.Errorf("BackendType = %s, want memory", res.BackendType)
			}
			if res.IsFallback != tt.wantFallback {
				t.Errorf("IsFallback = %v, want %v", res.IsFallback, tt.wantFallback)
			}
			if tt.wantFallback && res.Err == nil {
				t.Error("fallback should report the redis error")
			}
		})
	}
}
