// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxGalleryAltLength is the longest alt text stored for a gallery item.
const MaxGalleryAltLength = 255

// GalleryItem is one image or video in the salon gallery.
type GalleryItem struct {
	ID        int64     `json:"id"`
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	Type      MediaType `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// GalleryInput is the writable part of a gallery item.
// An empty Type is inferred from the media source.
type GalleryInput struct {
	Src  string    `json:"src"`
	Alt  string    `json:"alt"`
	Type MediaType `json:"type"`
}

// Normalize trims surrounding whitespace and lowercases the type.
func (g *GalleryInput) Normalize() {
	g.Src = strings.TrimSpace(g.Src)
	g.Alt = strings.TrimSpace(g.Alt)
	g.Type = MediaType(strings.ToLower(strings.TrimSpace(string(g.Type))))
}

// Validate checks the required fields of a gallery item.
func (g GalleryInput) Validate() error {
	errs := ValidationErrors{}
	if g.Src == "" {
		errs.Add("src", "Media source is required")
	}
	if !g.Type.Valid() {
		errs.Add("type", "Type must be image or video")
	}
	if utf8.RuneCountInString(g.Alt) > MaxGalleryAltLength {
		errs.Add("alt", "Alt text is too long")
	}
	return errs.OrNil()
}
