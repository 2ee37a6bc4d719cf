// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the admin cookie gate,
// login throttling, rate limiting and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys.
const (
	ContextKeyRequestPath ContextKey = "request_path"
)

// AdminCookieValue is the only cookie value that grants admin status.
const AdminCookieValue = "true"

// AdminCookie issues and checks the admin session marker.
// The cookie carries no identity: anyone presenting it is the admin.
type AdminCookie struct {
	Name   string
	Secure bool
	// MaxAge in seconds. Zero makes it a browser-session cookie.
	MaxAge int
}

// NewAdminCookie returns an AdminCookie with Secure set outside development.
func NewAdminCookie(name string, maxAge int, isDev bool) AdminCookie {
	return AdminCookie{Name: name, Secure: !isDev, MaxAge: maxAge}
}

// Issue sets the admin cookie on the response.
func (ac AdminCookie) Issue(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ac.Name,
		Value:    AdminCookieValue,
		Path:     "/",
		MaxAge:   ac.MaxAge,
		HttpOnly: true,
		Secure:   ac.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the admin cookie.
func (ac AdminCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ac.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ac.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// IsAdmin reports whether the request carries the admin cookie set to exactly "true".
func (ac AdminCookie) IsAdmin(r *http.Request) bool {
	c, err := r.Cookie(ac.Name)
	if err != nil {
		return false
	}
	return c.Value == AdminCookieValue
}

// RequireAdmin creates middleware that rejects requests without the admin cookie.
func RequireAdmin(ac AdminCookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ac.IsAdmin(r) {
				slog.Warn("admin access denied",
					"status", http.StatusUnauthorized,
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Admin access required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
