// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits for services.
const (
	MaxServiceTitleLength       = 120
	MaxServiceDescriptionLength = 2000
	MaxIconAltLength            = 255
)

// Service is a salon service card.
type Service struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html"`
	IconSrc         string    `json:"iconsrc"`
	IconType        MediaType `json:"icontype"`
	IconAlt         string    `json:"iconalt"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ServiceInput is the writable part of a service.
type ServiceInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IconSrc     string    `json:"iconsrc"`
	IconType    MediaType `json:"icontype"`
	IconAlt     string    `json:"iconalt"`
}

// NewServiceDraft returns the placeholder card created by "Add New Service".
func NewServiceDraft() ServiceInput {
	return ServiceInput{
		Title:       "New Service",
		Description: "Description here",
		IconSrc:     "/placeholder.svg",
		IconType:    MediaImage,
		IconAlt:     "New Service",
	}
}

// Normalize trims surrounding whitespace and lowercases the icon type.
func (s *ServiceInput) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.IconSrc = strings.TrimSpace(s.IconSrc)
	s.IconAlt = strings.TrimSpace(s.IconAlt)
	if s.IconType == "" {
		s.IconType = MediaImage
	}
	s.IconType = MediaType(strings.ToLower(string(s.IconType)))
}

// Validate checks the required fields of a service.
func (s ServiceInput) Validate() error {
	errs := ValidationErrors{}
	if s.Title == "" {
		errs.Add("title", "Title is required")
	} else if utf8.RuneCountInString(s.Title) > MaxServiceTitleLength {
		errs.Add("title", "Title is too long")
	}
	if s.Description == "" {
		errs.Add("description", "Description is required")
	} else if utf8.RuneCountInString(s.Description) > MaxServiceDescriptionLength {
		errs.Add("description", "Description is too long")
	}
	if s.IconSrc == "" {
		errs.Add("iconsrc", "Image source is required")
	}
	if !s.IconType.Valid() {
		errs.Add("icontype", "Icon type must be image or video")
	}
	if utf8.RuneCountInString(s.IconAlt) > MaxIconAltLength {
		errs.Add("iconalt", "Alt text is too long")
	}
	return errs.OrNil()
}
