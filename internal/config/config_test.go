// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-Secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "SALON_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverSQLite)
	}
	if cfg.DBPath != "./data/salon.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/salon.db")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.AdminCookie != "isAdmin" {
		t.Errorf("AdminCookie = %q, want %q", cfg.AdminCookie, "isAdmin")
	}
	if cfg.ResetTokenTTL != 24*time.Hour {
		t.Errorf("ResetTokenTTL = %v, want 24h", cfg.ResetTokenTTL)
	}
	if cfg.MaxServices != 8 {
		t.Errorf("MaxServices = %d, want 8", cfg.MaxServices)
	}
	if cfg.MaxGalleryItems != 10 {
		t.Errorf("MaxGalleryItems = %d, want 10", cfg.MaxGalleryItems)
	}
	if cfg.MediaMaxPixels != 40_000_000 {
		t.Errorf("MediaMaxPixels = %d, want 40000000", cfg.MediaMaxPixels)
	}
	if cfg.CacheDuration() != 5*time.Minute {
		t.Errorf("CacheDuration() = %v, want 5m", cfg.CacheDuration())
	}
	if cfg.SMTPEnabled() {
		t.Error("SMTPEnabled() = true, want false")
	}
	if cfg.SeedAdminEnabled() {
		t.Error("SeedAdminEnabled() = true, want false")
	}
	if cfg.DSN() != cfg.DBPath {
		t.Errorf("DSN() = %q, want %q", cfg.DSN(), cfg.DBPath)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "SALON_SESSION_SECRET", testSecret)
	setEnv(t, "SALON_DB_DRIVER", "postgres")
	setEnv(t, "SALON_DATABASE_URL", "postgres://salon:pw@db:5432/salon?sslmode=disable")
	setEnv(t, "SALON_SERVER_PORT", "3000")
	setEnv(t, "SALON_ENV", "production")
	setEnv(t, "SALON_SITE_URL", "https://salon.example.com/")
	setEnv(t, "SALON_ADMIN_EMAIL", "owner@salon.example.com")
	setEnv(t, "SALON_ADMIN_PASSWORD", "hunter22")
	setEnv(t, "SALON_ADMIN_COOKIE", "admin")
	setEnv(t, "SALON_RESET_TOKEN_TTL", "2h")
	setEnv(t, "SALON_SMTP_HOST", "smtp.example.com")
	setEnv(t, "SALON_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.UsePostgres() {
		t.Error("UsePostgres() = false, want true")
	}
	if !strings.HasPrefix(cfg.DSN(), "postgres://") {
		t.Errorf("DSN() = %q, want postgres URL", cfg.DSN())
	}
	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want 3000", cfg.ServerPort)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.SiteURL != "https://salon.example.com" {
		t.Errorf("SiteURL = %q, want trailing slash trimmed", cfg.SiteURL)
	}
	if !cfg.SeedAdminEnabled() {
		t.Error("SeedAdminEnabled() = false, want true")
	}
	if cfg.AdminCookie != "admin" {
		t.Errorf("AdminCookie = %q, want %q", cfg.AdminCookie, "admin")
	}
	if cfg.ResetTokenTTL != 2*time.Hour {
		t.Errorf("ResetTokenTTL = %v, want 2h", cfg.ResetTokenTTL)
	}
	if !cfg.SMTPEnabled() {
		t.Error("SMTPEnabled() = false, want true")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false, want true")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{},
			wantErr: "SALON_SESSION_SECRET",
		},
		{
			name:    "short secret",
			env:     map[string]string{"SALON_SESSION_SECRET": "short"},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "weak secret",
			env:     map[string]string{"SALON_SESSION_SECRET": "change-me-to-32-byte-secret-key!"},
			wantErr: "known default",
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"SALON_SESSION_SECRET": testSecret, "SALON_DB_DRIVER": "postgres"},
			wantErr: "SALON_DATABASE_URL",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"SALON_SESSION_SECRET": testSecret, "SALON_DB_DRIVER": "oracle"},
			wantErr: "unsupported SALON_DB_DRIVER",
		},
		{
			name:    "bad cookie name",
			env:     map[string]string{"SALON_SESSION_SECRET": testSecret, "SALON_ADMIN_COOKIE": "is admin"},
			wantErr: "not a valid cookie name",
		},
		{
			name:    "relative site url",
			env:     map[string]string{"SALON_SESSION_SECRET": testSecret, "SALON_SITE_URL": "/salon"},
			wantErr: "SALON_SITE_URL",
		},
		{
			name:    "zero gallery cap",
			env:     map[string]string{"SALON_SESSION_SECRET": testSecret, "SALON_MAX_GALLERY_ITEMS": "0"},
			wantErr: "must be positive",
		},
		{
			name:    "zero pixel cap",
			env:     map[string]string{"SALON_SESSION_SECRET": testSecret, "SALON_MEDIA_MAX_PIXELS": "0"},
			wantErr: "SALON_MEDIA_MAX_PIXELS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				setEnv(t, k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"aaaaaaaaaaaaaaaaAAAAAAAAAAAAAAAA", false},
		{"aaaaaaaaaaAAAAAAAAAA000000000000", true},
		{"abcABC!@#abcABC!@#abcABC!@#abcAB", true},
	}

	for _, tt := range tests {
		t.Run(tt.secret, func(t *testing.T) {
			if got := hasMinimumEntropy(tt.secret); got != tt.want {
				t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
			}
		})
	}
}

func TestValidCookieName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"isAdmin", true},
		{"admin", true},
		{"__Host-admin", true},
		{"", false},
		{"is admin", false},
		{"admin;", false},
		{"admin=1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validCookieName(tt.name); got != tt.want {
				t.Errorf("validCookieName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
