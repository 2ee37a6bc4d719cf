// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/salon-go/internal/model"
)

type serviceEnvelope struct {
	Data model.Service `json:"data"`
}

type serviceListEnvelope struct {
	Data []model.Service `json:"data"`
}

type galleryEnvelope struct {
	Data model.GalleryItem `json:"data"`
}

type galleryListEnvelope struct {
	Data []model.GalleryItem `json:"data"`
}

func TestServices_ListIsPublic(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

	w := do(t, h, http.MethodGet, "/api/services", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestServices_WritesRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

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
			w := do(t, h, tt.method, tt.path, map[string]string{"title": "x"},
				&http.Cookie{Name: testCookieName, Value: "yes"})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "unauthorized", decodeBody[ErrorResponse](t, w).Error.Code)
		})
	}

	count, err := app.queries.CountServices(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestServices_CRUD(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

	// An empty body creates the placeholder service.
	w := do(t, h, http.MethodPost, "/api/services", nil, adminCookie())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draft := decodeBody[serviceEnvelope](t, w).Data
	assert.Equal(t, "New Service", draft.Title)
	assert.Equal(t, model.MediaImage, draft.IconType)

	path := fmt.Sprintf("/api/services/%d", draft.ID)
	w = do(t, h, http.MethodPut, path, map[string]string{
		"title":       "Balayage",
		"description": "Hand painted *highlights*",
		"iconsrc":     "/icons/brush.svg",
		"icontype":    "image",
		"iconalt":     "Brush",
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody[serviceEnvelope](t, w).Data
	assert.Equal(t, "Balayage", updated.Title)
	assert.Contains(t, updated.DescriptionHTML, "<em>highlights</em>")

	w = do(t, h, http.MethodGet, "/api/services", nil)
	list := decodeBody[serviceListEnvelope](t, w).Data
	require.Len(t, list, 1)
	assert.Equal(t, "Balayage", list[0].Title)

	w = do(t, h, http.MethodDelete, path, nil, adminCookie())
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/services", nil)
	assert.Empty(t, decodeBody[serviceListEnvelope](t, w).Data)

	events, err := app.events.ListEvents(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Service deleted", events[0].Message)
	assert.Equal(t, model.EventCategoryContent, events[0].Category)
}

func TestServices_Errors(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

	valid := map[string]string{"title": "t", "description": "d", "iconsrc": "/a.png"}

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing title", http.MethodPost, "/api/services", map[string]string{"description": "d", "iconsrc": "/a.png"}, http.StatusUnprocessableEntity, "validation_error"},
		{"bad media", http.MethodPost, "/api/services", map[string]string{"title": "t", "description": "d", "iconsrc": "ftp://x/a.png"}, http.StatusUnprocessableEntity, "validation_error"},
		{"malformed json", http.MethodPost, "/api/services", "{", http.StatusBadRequest, "bad_request"},
		{"bad id", http.MethodPut, "/api/services/abc", valid, http.StatusBadRequest, "bad_request"},
		{"missing row", http.MethodPut, "/api/services/999", valid, http.StatusNotFound, "not_found"},
		{"delete missing row", http.MethodDelete, "/api/services/999", nil, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body, adminCookie())
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeBody[ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestServices_ValidationDetails(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

	w := do(t, h, http.MethodPost, "/api/services", map[string]string{"description": "d", "iconsrc": "/a.png"}, adminCookie())

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeBody[ErrorResponse](t, w)
	assert.Contains(t, resp.Error.Details, "title")
}

func TestServices_Limit(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

	for i := 0; i < 8; i++ {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/services", nil, adminCookie()).Code)
	}

	w := do(t, h, http.MethodPost, "/api/services", nil, adminCookie())
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeBody[ErrorResponse](t, w)
	assert.Equal(t, "limit_reached", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "8")
}

func TestGallery_CRUD(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

	w := do(t, h, http.MethodPost, "/api/gallery", map[string]string{"src": "/photos/salon.jpg", "alt": "Front desk"}, adminCookie())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decodeBody[galleryEnvelope](t, w).Data
	assert.Equal(t, model.MediaImage, item.Type)

	w = do(t, h, http.MethodPost, "/api/gallery", map[string]string{"src": "https://cdn.example.com/tour.mp4"}, adminCookie())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, model.MediaVideo, decodeBody[galleryEnvelope](t, w).Data.Type)

	path := fmt.Sprintf("/api/gallery/%d", item.ID)
	w = do(t, h, http.MethodPut, path, map[string]string{"src": "/photos/chairs.png", "alt": "Chairs", "type": "image"}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Chairs", decodeBody[galleryEnvelope](t, w).Data.Alt)

	w = do(t, h, http.MethodGet, "/api/gallery", nil)
	list := decodeBody[galleryListEnvelope](t, w).Data
	require.Len(t, list, 2)
	assert.Equal(t, item.ID, list[0].ID, "insertion order")

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, path, nil, adminCookie()).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, path, nil, adminCookie()).Code)
}

func TestGallery_Limit(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

	for i := 0; i < 10; i++ {
		body := map[string]string{"src": fmt.Sprintf("/photos/%d.jpg", i)}
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/gallery", body, adminCookie()).Code)
	}

	w := do(t, h, http.MethodPost, "/api/gallery", map[string]string{"src": "/photos/extra.jpg"}, adminCookie())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "limit_reached", decodeBody[ErrorResponse](t, w).Error.Code)
}

func TestGallery_Validation(t *testing.T) {
	app := newTestApp(t)
	h := app.router(nil)

	w := do(t, h, http.MethodPost, "/api/gallery", map[string]string{"src": ""}, adminCookie())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/api/gallery", nil, adminCookie())
	assert.Equal(t, http.StatusBadRequest, w.Code, "gallery items have no placeholder")
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		id      string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": tt.id})
			got, err := ParseIDParam(r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"src":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	var in model.GalleryInput
	assert.Error(t, decodeJSON(w, r, &in))
}
