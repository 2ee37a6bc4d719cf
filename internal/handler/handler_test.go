// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/salon-go/internal/cache"
	"github.com/olegiv/salon-go/internal/mail"
	"github.com/olegiv/salon-go/internal/media"
	"github.com/olegiv/salon-go/internal/middleware"
	"github.com/olegiv/salon-go/internal/service"
	"github.com/olegiv/salon-go/internal/session"
	"github.com/olegiv/salon-go/internal/store"
	"github.com/olegiv/salon-go/internal/testutil"
)

const testCookieName = "isAdmin"

// recordingMailer keeps sent messages.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type testApp struct {
	db      *sql.DB
	queries *store.Queries
	mailer  *recordingMailer
	sm      *scs.SessionManager
	cookie  middleware.AdminCookie
	auth    *service.AuthService
	content *service.ContentService
	events  *service.EventService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.TestDB(t)
	queries := store.New(db)
	logger := testutil.TestLoggerSilent()

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	mailer := &recordingMailer{}
	return &testApp{
		db:      db,
		queries: queries,
		mailer:  mailer,
		sm:      session.New(db, store.DialectSQLite, true),
		cookie:  middleware.NewAdminCookie(testCookieName, 0, true),
		auth: service.NewAuthService(queries, mailer, service.AuthConfig{
			SiteURL: "https://salon.example.com",
		}, logger),
		content: service.NewContentService(queries, c, media.NewProcessor(0, 0),
			service.ContentLimits{MaxServices: 8, MaxGalleryItems: 10}, time.Minute, logger),
		events: service.NewEventService(queries, logger),
	}
}

// router mounts the API the way the server does, without the outer
// middleware stack.
func (a *testApp) router(lp *middleware.LoginProtection) http.Handler {
	authHandler := NewAuthHandler(a.auth, a.events, a.sm, a.cookie, lp)
	adminHandler := NewAdminHandler(a.cookie)
	servicesHandler := NewServicesHandler(a.content, a.events, a.sm)
	galleryHandler := NewGalleryHandler(a.content, a.events, a.sm)
	reviewsHandler := NewReviewsHandler(a.content, a.events)
	requireAdmin := middleware.RequireAdmin(a.cookie)

	r := chi.NewRouter()
	r.Use(a.sm.LoadAndSave)
	r.Get("/api/admin", adminHandler.Status)
	r.Post("/api/login", authHandler.Login)
	r.Put("/api/login", authHandler.RequestReset)
	r.Patch("/api/login", authHandler.ResetPassword)
	r.Post("/api/logout", authHandler.Logout)

	r.Get("/api/services", servicesHandler.List)
	r.Get("/api/gallery", galleryHandler.List)
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/api/services", servicesHandler.Create)
		r.Put("/api/services/{id}", servicesHandler.Update)
		r.Delete("/api/services/{id}", servicesHandler.Delete)
		r.Post("/api/gallery", galleryHandler.Create)
		r.Put("/api/gallery/{id}", galleryHandler.Update)
		r.Delete("/api/gallery/{id}", galleryHandler.Delete)
	})

	r.Get("/api/reviews", reviewsHandler.List)
	r.Post("/api/reviews", reviewsHandler.Create)
	return r
}

// do sends a JSON request through h. body may be nil or a string.
func do(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func adminCookie() *http.Cookie {
	return &http.Cookie{Name: testCookieName, Value: "true"}
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", strings.TrimSpace(w.Body.String()), err)
	}
	return v
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
