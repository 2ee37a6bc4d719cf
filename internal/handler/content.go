// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/salon-go/internal/model"
	"github.com/olegiv/salon-go/internal/service"
	"github.com/olegiv/salon-go/internal/session"
)

// contentHandler holds what the services and gallery handlers share.
type contentHandler struct {
	content        *service.ContentService
	events         *service.EventService
	sessionManager *scs.SessionManager
}

// logChange records an admin content change. The signed-in admin's email
// is attached when a session is available.
func (h *contentHandler) logChange(r *http.Request, message string, id int64) {
	if h.events == nil {
		return
	}
	metadata := map[string]any{"id": id}
	if h.sessionManager != nil {
		if email := session.AdminEmail(r.Context(), h.sessionManager); email != "" {
			metadata["admin"] = email
		}
	}
	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, message, requestInfo(r), metadata)
}

// writeContentError maps service errors to API error responses.
func writeContentError(w http.ResponseWriter, err error, entity string) {
	var verrs model.ValidationErrors
	var limitErr *service.LimitError
	switch {
	case errors.As(err, &verrs):
		WriteValidationError(w, verrs)
	case errors.As(err, &limitErr):
		WriteConflict(w, fmt.Sprintf("You can only have up to %d %s", limitErr.Max, limitErr.Kind))
	case service.IsNotFound(err):
		WriteNotFound(w, entity+" not found")
	default:
		slog.Error("content request failed", "entity", entity, "error", err, "category", model.EventCategoryContent)
		WriteInternalError(w)
	}
}

// ServicesHandler handles /api/services.
type ServicesHandler struct {
	contentHandler
}

// NewServicesHandler creates a new ServicesHandler. sm may be nil.
func NewServicesHandler(content *service.ContentService, events *service.EventService, sm *scs.SessionManager) *ServicesHandler {
	return &ServicesHandler{contentHandler{content: content, events: events, sessionManager: sm}}
}

// List handles GET /api/services.
func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.content.ListServices(r.Context())
	if err != nil {
		writeContentError(w, err, "Service")
		return
	}
	WriteSuccess(w, services)
}

// Create handles POST /api/services. An empty body creates the placeholder
// service the admin then edits in place.
func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ServiceInput
	if err := decodeJSON(w, r, &in); err != nil && !errors.Is(err, errEmptyBody) {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	svc, err := h.content.CreateService(r.Context(), in)
	if err != nil {
		writeContentError(w, err, "Service")
		return
	}

	h.logChange(r, "Service created", svc.ID)
	WriteCreated(w, svc)
}

// Update handles PUT /api/services/{id}.
func (h *ServicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid service ID")
		return
	}

	var in model.ServiceInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	svc, err := h.content.UpdateService(r.Context(), id, in)
	if err != nil {
		writeContentError(w, err, "Service")
		return
	}

	h.logChange(r, "Service updated", svc.ID)
	WriteSuccess(w, svc)
}

// Delete handles DELETE /api/services/{id}.
func (h *ServicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid service ID")
		return
	}

	if err := h.content.DeleteService(r.Context(), id); err != nil {
		writeContentError(w, err, "Service")
		return
	}

	h.logChange(r, "Service deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// GalleryHandler handles /api/gallery.
type GalleryHandler struct {
	contentHandler
}

// NewGalleryHandler creates a new GalleryHandler. sm may be nil.
func NewGalleryHandler(content *service.ContentService, events *service.EventService, sm *scs.SessionManager) *GalleryHandler {
	return &GalleryHandler{contentHandler{content: content, events: events, sessionManager: sm}}
}

// List handles GET /api/gallery.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListGalleryItems(r.Context())
	if err != nil {
		writeContentError(w, err, "Gallery item")
		return
	}
	WriteSuccess(w, items)
}

// Create handles POST /api/gallery.
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.GalleryInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	item, err := h.content.CreateGalleryItem(r.Context(), in)
	if err != nil {
		writeContentError(w, err, "Gallery item")
		return
	}

	h.logChange(r, "Gallery item created", item.ID)
	WriteCreated(w, item)
}

// Update handles PUT /api/gallery/{id}.
func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid gallery item ID")
		return
	}

	var in model.GalleryInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	item, err := h.content.UpdateGalleryItem(r.Context(), id, in)
	if err != nil {
		writeContentError(w, err, "Gallery item")
		return
	}

	h.logChange(r, "Gallery item updated", item.ID)
	WriteSuccess(w, item)
}

// Delete handles DELETE /api/gallery/{id}.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid gallery item ID")
		return
	}

	if err := h.content.DeleteGalleryItem(r.Context(), id); err != nil {
		writeContentError(w, err, "Gallery item")
		return
	}

	h.logChange(r, "Gallery item deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
