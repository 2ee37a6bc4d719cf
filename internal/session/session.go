// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session used to remember which
// admin signed in. Authorization never reads it; the admin cookie does that.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/salon-go/internal/store"
)

// Lifetime is the absolute session lifetime.
const Lifetime = 24 * time.Hour

const keyAdminEmail = "admin_email"

// New creates a session manager. SQLite databases keep sessions in the
// sessions table; other dialects use an in-process store.
func New(db *sql.DB, d store.Dialect, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if d == store.DialectSQLite {
		sm.Store = sqlite3store.New(db)
	} else {
		sm.Store = memstore.New()
	}

	sm.Lifetime = Lifetime
	sm.Cookie.Name = "salon_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-salon_session"
	}

	return sm
}

// SetAdminEmail records the signed-in admin on the session.
func SetAdminEmail(ctx context.Context, sm *scs.SessionManager, email string) {
	sm.Put(ctx, keyAdminEmail, email)
}

// AdminEmail returns the admin recorded on the session, or "".
func AdminEmail(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, keyAdminEmail)
}
