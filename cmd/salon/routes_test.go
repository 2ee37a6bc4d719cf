// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/salon-go/internal/cache"
	"github.com/olegiv/salon-go/internal/handler"
	"github.com/olegiv/salon-go/internal/media"
	"github.com/olegiv/salon-go/internal/middleware"
	"github.com/olegiv/salon-go/internal/service"
	"github.com/olegiv/salon-go/internal/session"
	"github.com/olegiv/salon-go/internal/store"
	"github.com/olegiv/salon-go/internal/testutil"
)

const (
	testAdminEmail    = "owner@salon.example.com"
	testAdminPassword = "s3cret-pass"
	testSecret        = "Xk9#mQ2$vL7@pR4!wT6^yU8&zA1*bC3%"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.TestDB(t)
	queries := store.New(db)
	logger := testutil.TestLoggerSilent()
	testutil.CreateUser(t, db, testAdminEmail, testAdminPassword)

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	sm := session.New(db, store.DialectSQLite, true)
	cookie := middleware.NewAdminCookie("isAdmin", 0, true)
	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	t.Cleanup(lp.Stop)

	events := service.NewEventService(queries, logger)
	auth := service.NewAuthService(queries, nil, service.AuthConfig{SiteURL: "http://localhost:8080"}, logger)
	content := service.NewContentService(queries, c, media.NewProcessor(0, 0),
		service.ContentLimits{MaxServices: 8, MaxGalleryItems: 10}, time.Minute, logger)

	return newRouter(routerConfig{
		IsDevelopment:   true,
		SiteURL:         "http://localhost:8080",
		SessionSecret:   []byte(testSecret),
		SessionManager:  sm,
		AdminCookie:     cookie,
		LoginProtection: lp,
		APILimiter:      middleware.NewGlobalRateLimiter(100, 200),
		ReviewLimiter:   middleware.NewGlobalRateLimiter(0.1, 3),
		Handlers: handlers{
			Admin:    handler.NewAdminHandler(cookie),
			Auth:     handler.NewAuthHandler(auth, events, sm, cookie, lp),
			Services: handler.NewServicesHandler(content, events, sm),
			Gallery:  handler.NewGalleryHandler(content, events, sm),
			Reviews:  handler.NewReviewsHandler(content, events),
			Health:   handler.NewHealthHandler(db, c, cookie, "test"),
		},
	})
}

func send(t *testing.T, h http.Handler, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func withCookies(cookies []*http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)

	w := send(t, h, http.MethodGet, RouteHealth, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Content-Type-Options"), "security headers applied")

	w = send(t, h, http.MethodGet, RouteHealthLive, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminStatusWithoutCookie(t *testing.T) {
	h := newTestRouter(t)

	w := send(t, h, http.MethodGet, "/api/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"isAdmin":false}`, w.Body.String())
}

func TestRouter_LoginThenManageServices(t *testing.T) {
	h := newTestRouter(t)

	w := send(t, h, http.MethodPost, "/api/login", map[string]string{"email": testAdminEmail, "password": "wrong"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, "isAdmin", c.Name, "failed login sets no admin cookie")
	}

	w = send(t, h, http.MethodPost, "/api/login", map[string]string{"email": testAdminEmail, "password": testAdminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()

	w = send(t, h, http.MethodGet, "/api/admin", nil, withCookies(cookies))
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(t, h, http.MethodPost, "/api/services", nil, withCookies(cookies))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(t, h, http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)

	w = send(t, h, http.MethodPost, "/api/logout", nil, withCookies(cookies))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_WritesRequireAdmin(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/services"},
		{http.MethodPut, "/api/services/1"},
		{http.MethodDelete, "/api/services/1"},
		{http.MethodPost, "/api/gallery"},
		{http.MethodPut, "/api/gallery/1"},
		{http.MethodDelete, "/api/gallery/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := send(t, h, tt.method, tt.path, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_RejectsCrossSiteWrites(t *testing.T) {
	h := newTestRouter(t)

	w := send(t, h, http.MethodPost, "/api/reviews",
		map[string]any{"name": "Ann", "text": "Great", "rating": 5},
		func(r *http.Request) {
			r.Header.Set("Sec-Fetch-Site", "cross-site")
			r.Header.Set("Origin", "https://attacker.example")
		})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_ReviewRateLimit(t *testing.T) {
	h := newTestRouter(t)
	body := map[string]any{"name": "Ann", "text": "Great", "rating": 5}

	for i := 0; i < 3; i++ {
		w := send(t, h, http.MethodPost, "/api/reviews", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := send(t, h, http.MethodPost, "/api/reviews", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Reads are not limited by the review limiter.
	w = send(t, h, http.MethodGet, "/api/reviews", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	h := newTestRouter(t)

	w := send(t, h, http.MethodGet, "/api/bookings", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"not_found"`)
}

func TestRouter_TrailingSlash(t *testing.T) {
	h := newTestRouter(t)

	w := send(t, h, http.MethodGet, "/api/gallery/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug": "DEBUG",
		"info":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
		"":      "INFO",
		"loud":  "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), in)
	}
}
