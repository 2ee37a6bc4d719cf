// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/salon-go/internal/middleware"
)

// AdminStatus is the body of GET /api/admin.
type AdminStatus struct {
	IsAdmin bool `json:"isAdmin"`
}

// AdminHandler reports whether the caller holds the admin cookie.
type AdminHandler struct {
	cookie middleware.AdminCookie
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cookie middleware.AdminCookie) *AdminHandler {
	return &AdminHandler{cookie: cookie}
}

// Status handles GET /api/admin.
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !h.cookie.IsAdmin(r) {
		WriteJSON(w, http.StatusUnauthorized, AdminStatus{IsAdmin: false})
		return
	}
	WriteJSON(w, http.StatusOK, AdminStatus{IsAdmin: true})
}
