// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID                   int64          `json:"id"`
	Email                string         `json:"email"`
	PasswordHash         string         `json:"password_hash"`
	ResetToken           sql.NullString `json:"reset_token"`
	ResetTokenExpiration sql.NullTime   `json:"reset_token_expiration"`
	LastLoginAt          sql.NullTime   `json:"last_login_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type Service struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Iconsrc     string    `json:"iconsrc"`
	Icontype    string    `json:"icontype"`
	Iconalt     string    `json:"iconalt"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type GalleryItem struct {
	ID        int64     `json:"id"`
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type Review struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Rating    int64     `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type Event struct {
	ID         int64     `json:"id"`
	Level      string    `json:"level"`
	Category   string    `json:"category"`
	Message    string    `json:"message"`
	Metadata   string    `json:"metadata"`
	IpAddress  string    `json:"ip_address"`
	RequestUrl string    `json:"request_url"`
	CreatedAt  time.Time `json:"created_at"`
}
