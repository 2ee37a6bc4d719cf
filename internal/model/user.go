// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including User, Service, GalleryItem, Review and event log constants.
package model

import (
	"database/sql"
	"time"

	"github.com/olegiv/salon-go/internal/auth"
)

// MinPasswordLength is the shortest password accepted by the reset flow.
const MinPasswordLength = 6

// User represents the admin credential record.
type User struct {
	ID                   int64        `json:"id"`
	Email                string       `json:"email"`
	PasswordHash         string       `json:"-"`
	ResetToken           string       `json:"-"`
	ResetTokenExpiration sql.NullTime `json:"-"`
	LastLoginAt          sql.NullTime `json:"-"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// HasValidResetToken reports whether token matches the stored reset token
// and the token has not expired at now.
func (u User) HasValidResetToken(token string, now time.Time) bool {
	if u.ResetToken == "" || !u.ResetTokenExpiration.Valid {
		return false
	}
	if !now.Before(u.ResetTokenExpiration.Time) {
		return false
	}
	return auth.TokensEqual(u.ResetToken, token)
}
