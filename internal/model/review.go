// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Review limits.
const (
	MaxReviewTextLength = 50
	MaxReviewNameLength = 80
	MinReviewRating     = 1
	MaxReviewRating     = 5
	// DefaultReviewLimit is how many reviews the home page shows.
	DefaultReviewLimit = 3
)

// Review is a visitor testimonial.
type Review struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewInput is a visitor-submitted review.
type ReviewInput struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// Normalize trims whitespace and applies NFC so length checks count
// user-perceived characters rather than combining sequences.
func (r *ReviewInput) Normalize() {
	r.Name = norm.NFC.String(strings.TrimSpace(r.Name))
	r.Text = norm.NFC.String(strings.TrimSpace(r.Text))
}

// Validate checks name, text length and rating range.
func (r ReviewInput) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(r.Name) == "" {
		errs.Add("name", "Name is required.")
	} else if utf8.RuneCountInString(r.Name) > MaxReviewNameLength {
		errs.Add("name", "Name is too long.")
	}
	if utf8.RuneCountInString(r.Text) > MaxReviewTextLength {
		errs.Add("text", "Review must be 50 characters or less.")
	}
	if r.Rating < MinReviewRating || r.Rating > MaxReviewRating {
		errs.Add("rating", "Please select a rating between 1 and 5.")
	}
	return errs.OrNil()
}
