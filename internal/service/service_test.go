// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/salon-go/internal/cache"
	"github.com/olegiv/salon-go/internal/mail"
	"github.com/olegiv/salon-go/internal/media"
	"github.com/olegiv/salon-go/internal/store"
	"github.com/olegiv/salon-go/internal/testutil"
)

// fakeMailer records sent messages and optionally fails.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type testEnv struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.MemoryCache
	mailer  *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.TestDB(t)
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	return &testEnv{
		db:      db,
		queries: store.New(db),
		cache:   c,
		mailer:  &fakeMailer{},
	}
}

func (e *testEnv) authService(cfg AuthConfig) *AuthService {
	if cfg.SiteURL == "" {
		cfg.SiteURL = "https://salon.example.com"
	}
	return NewAuthService(e.queries, e.mailer, cfg, testutil.TestLoggerSilent())
}

func (e *testEnv) contentService(limits ContentLimits) *ContentService {
	svc := NewContentService(e.queries, e.cache, media.NewProcessor(0, 0), limits, time.Minute, testutil.TestLoggerSilent())
	svc.now = stepClock()
	return svc
}
