// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/salon-go/internal/handler"
	"github.com/olegiv/salon-go/internal/middleware"
)

// Route paths.
const (
	RouteHealth     = "/health"
	RouteHealthLive = "/health/live"
	RouteAPI        = "/api"
	RouteAdmin      = "/admin"
	RouteLogin      = "/login"
	RouteLogout     = "/logout"
	RouteServices   = "/services"
	RouteGallery    = "/gallery"
	RouteReviews    = "/reviews"
	RouteSuffixID   = "/{id}"
)

// requestTimeout bounds a single request, including media processing.
const requestTimeout = 30 * time.Second

// handlers groups the HTTP handlers mounted by the router.
type handlers struct {
	Admin    *handler.AdminHandler
	Auth     *handler.AuthHandler
	Services *handler.ServicesHandler
	Gallery  *handler.GalleryHandler
	Reviews  *handler.ReviewsHandler
	Health   *handler.HealthHandler
}

// routerConfig carries everything newRouter needs.
type routerConfig struct {
	IsDevelopment bool
	SiteURL       string
	SessionSecret []byte

	SessionManager  *scs.SessionManager
	AdminCookie     middleware.AdminCookie
	LoginProtection *middleware.LoginProtection
	APILimiter      *middleware.GlobalRateLimiter
	ReviewLimiter   *middleware.GlobalRateLimiter

	Handlers handlers
}

// contentRoutes is implemented by the services and gallery handlers.
type contentRoutes interface {
	List(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

// registerContent mounts the public list and admin-only writes for a resource.
// Routes: GET /, POST /, PUT /{id}, DELETE /{id}
func registerContent(r chi.Router, base string, h contentRoutes, requireAdmin func(http.Handler) http.Handler) {
	r.Get(base, h.List)
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post(base, h.Create)
		r.Put(base+RouteSuffixID, h.Update)
		r.Delete(base+RouteSuffixID, h.Delete)
	})
}

// newRouter builds the HTTP router with the full middleware stack.
func newRouter(cfg routerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead) // HEAD for uptime monitors
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.RequestPath)

	h := cfg.Handlers

	r.Get(RouteHealth, h.Health.Health)
	r.Get(RouteHealthLive, h.Health.Liveness)

	r.Route(RouteAPI, func(r chi.Router) {
		if cfg.APILimiter != nil {
			r.Use(cfg.APILimiter.Middleware())
		}
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.SessionSecret, cfg.SiteURL, cfg.IsDevelopment)))
		r.Use(cfg.SessionManager.LoadAndSave)

		r.Get(RouteAdmin, h.Admin.Status)

		r.Group(func(r chi.Router) {
			if cfg.LoginProtection != nil {
				r.Use(cfg.LoginProtection.Middleware())
			}
			r.Post(RouteLogin, h.Auth.Login)
			r.Put(RouteLogin, h.Auth.RequestReset)
			r.Patch(RouteLogin, h.Auth.ResetPassword)
		})
		r.Post(RouteLogout, h.Auth.Logout)

		requireAdmin := middleware.RequireAdmin(cfg.AdminCookie)
		registerContent(r, RouteServices, h.Services, requireAdmin)
		registerContent(r, RouteGallery, h.Gallery, requireAdmin)

		r.Get(RouteReviews, h.Reviews.List)
		r.Group(func(r chi.Router) {
			if cfg.ReviewLimiter != nil {
				r.Use(cfg.ReviewLimiter.Middleware(http.MethodPost))
			}
			r.Post(RouteReviews, h.Reviews.Create)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			handler.WriteNotFound(w, "Not found")
		})
	})

	return r
}
