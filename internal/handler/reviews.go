// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/olegiv/salon-go/internal/model"
	"github.com/olegiv/salon-go/internal/service"
)

// ReviewsHandler handles /api/reviews. Anyone may read or submit reviews.
type ReviewsHandler struct {
	content *service.ContentService
	events  *service.EventService
}

// NewReviewsHandler creates a new ReviewsHandler.
func NewReviewsHandler(content *service.ContentService, events *service.EventService) *ReviewsHandler {
	return &ReviewsHandler{content: content, events: events}
}

// List handles GET /api/reviews?limit=n.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			WriteValidationError(w, map[string]string{"limit": "Limit must be a number"})
			return
		}
		limit = n
	}

	reviews, err := h.content.ListReviews(r.Context(), limit)
	if err != nil {
		writeContentError(w, err, "Review")
		return
	}
	WriteSuccess(w, reviews)
}

// Create handles POST /api/reviews.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	review, err := h.content.CreateReview(r.Context(), in)
	if err != nil {
		writeContentError(w, err, "Review")
		return
	}

	if h.events != nil {
		_ = h.events.LogReviewEvent(r.Context(), model.EventLevelInfo, "Review submitted", requestInfo(r),
			map[string]any{"id": review.ID, "rating": review.Rating})
	}
	WriteCreated(w, review)
}
