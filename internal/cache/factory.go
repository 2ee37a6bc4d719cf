// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"net/url"
	"time"
)

// Defaults shared by the cache backends.
const (
	DefaultTTL    = 5 * time.Minute
	DefaultPrefix = "salon:"
)

// Backend names reported by NewCacheWithInfo.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds configuration for cache creation.
type Config struct {
	// Type is the cache backend type: "memory" or "redis"
	Type string

	// RedisURL is the Redis connection URL (only for redis type)
	RedisURL string

	// Prefix is the key prefix for Redis (only for redis type)
	Prefix string

	DefaultTTL      time.Duration
	MaxSize         int // memory only, 0 = unlimited
	CleanupInterval time.Duration

	// FallbackToMemory returns a memory cache when Redis is unreachable.
	FallbackToMemory bool
}

// Result describes the cache that was actually created.
type Result struct {
	Cache       Cache
	BackendType string
	IsFallback  bool
	// Err is the Redis error that caused a fallback, if any.
	Err error
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		Type:            CacheBackendMemory,
		Prefix:          DefaultPrefix,
		DefaultTTL:      DefaultTTL,
		MaxSize:         1000,
		CleanupInterval: time.Minute,
	}
}

// NewCache creates a cache based on the provided configuration.
func NewCache(cfg Config) (Cache, error) {
	res, err := NewCacheWithInfo(cfg)
	if err != nil {
		return nil, err
	}
	return res.Cache, nil
}

// NewCacheWithInfo creates a cache and reports which backend is in use.
// A Redis failure falls back to memory only when FallbackToMemory is set.
func NewCacheWithInfo(cfg Config) (Result, error) {
	if cfg.Type == CacheBackendRedis && cfg.RedisURL != "" {
		rc, err := NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			return Result{Cache: rc, BackendType: CacheBackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return Result{}, fmt.Errorf("connecting to redis at %s: %w", SanitizeRedisURL(cfg.RedisURL), err)
		}
		return Result{
			Cache:       newMemoryFromConfig(cfg),
			BackendType: CacheBackendMemory,
			IsFallback:  true,
			Err:         err,
		}, nil
	}

	return Result{Cache: newMemoryFromConfig(cfg), BackendType: CacheBackendMemory}, nil
}

func newMemoryFromConfig(cfg Config) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
