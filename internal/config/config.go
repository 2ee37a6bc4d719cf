// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the salon server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver      string `env:"SALON_DB_DRIVER" envDefault:"sqlite"`
	DBPath        string `env:"SALON_DB_PATH" envDefault:"./data/salon.db"`
	DatabaseURL   string `env:"SALON_DATABASE_URL"` // Postgres DSN, required when DBDriver is postgres
	SessionSecret string `env:"SALON_SESSION_SECRET,required"`
	ServerHost    string `env:"SALON_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"SALON_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"SALON_ENV" envDefault:"development"`
	LogLevel      string `env:"SALON_LOG_LEVEL" envDefault:"info"`
	SiteURL       string `env:"SALON_SITE_URL" envDefault:"http://localhost:8080"`

	// Admin account and session cookie
	AdminEmail        string        `env:"SALON_ADMIN_EMAIL"`
	AdminPassword     string        `env:"SALON_ADMIN_PASSWORD"`
	AdminCookie       string        `env:"SALON_ADMIN_COOKIE" envDefault:"isAdmin"`
	AdminCookieMaxAge int           `env:"SALON_ADMIN_COOKIE_MAX_AGE" envDefault:"0"` // seconds, 0 = browser session
	ResetTokenTTL     time.Duration `env:"SALON_RESET_TOKEN_TTL" envDefault:"24h"`
	RequireResetToken bool          `env:"SALON_REQUIRE_RESET_TOKEN" envDefault:"false"`

	// Outbound mail
	SMTPHost     string `env:"SALON_SMTP_HOST"`
	SMTPPort     int    `env:"SALON_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SALON_SMTP_USERNAME"`
	SMTPPassword string `env:"SALON_SMTP_PASSWORD"`
	SMTPFrom     string `env:"SALON_SMTP_FROM" envDefault:"no-reply@localhost"`

	// Cache configuration
	RedisURL    string `env:"SALON_REDIS_URL"`                         // Optional Redis URL for shared caching
	CachePrefix string `env:"SALON_CACHE_PREFIX" envDefault:"salon:"` // Redis key prefix
	CacheTTL    int    `env:"SALON_CACHE_TTL" envDefault:"300"`       // Content cache TTL in seconds

	// Content limits
	MaxServices       int   `env:"SALON_MAX_SERVICES" envDefault:"8"`
	MaxGalleryItems   int   `env:"SALON_MAX_GALLERY_ITEMS" envDefault:"10"`
	MediaMaxBytes     int64 `env:"SALON_MEDIA_MAX_BYTES" envDefault:"8388608"`
	MediaMaxDimension int   `env:"SALON_MEDIA_MAX_DIMENSION" envDefault:"1920"`
	MediaMaxPixels    int64 `env:"SALON_MEDIA_MAX_PIXELS" envDefault:"40000000"`

	// Seeding configuration
	DoSeed bool `env:"SALON_DO_SEED" envDefault:"false"` // Insert starter services into an empty table
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UsePostgres returns true if the hosted Postgres store is configured.
func (c Config) UsePostgres() bool {
	return c.DBDriver == DriverPostgres
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.UsePostgres() {
		return c.DatabaseURL
	}
	return c.DBPath
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SMTPEnabled returns true if outbound mail can be delivered over SMTP.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// SeedAdminEnabled returns true if the admin account should be seeded at startup.
func (c Config) SeedAdminEnabled() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// CacheDuration returns the content cache TTL.
func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("SALON_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SALON_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("SALON_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("SALON_DATABASE_URL is required when SALON_DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported SALON_DB_DRIVER %q (use %q or %q)", c.DBDriver, DriverSQLite, DriverPostgres)
	}

	if !validCookieName(c.AdminCookie) {
		return fmt.Errorf("SALON_ADMIN_COOKIE %q is not a valid cookie name", c.AdminCookie)
	}

	if u, err := url.Parse(c.SiteURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("SALON_SITE_URL %q must be an absolute http(s) URL", c.SiteURL)
	}
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")

	if c.ResetTokenTTL <= 0 {
		return errors.New("SALON_RESET_TOKEN_TTL must be positive")
	}
	if c.MaxServices <= 0 || c.MaxGalleryItems <= 0 {
		return errors.New("SALON_MAX_SERVICES and SALON_MAX_GALLERY_ITEMS must be positive")
	}
	if c.MediaMaxBytes <= 0 || c.MediaMaxDimension <= 0 || c.MediaMaxPixels <= 0 {
		return errors.New("SALON_MEDIA_MAX_BYTES, SALON_MEDIA_MAX_DIMENSION and SALON_MEDIA_MAX_PIXELS must be positive")
	}
	if c.CacheTTL < 0 {
		return errors.New("SALON_CACHE_TTL must not be negative")
	}
	return nil
}

// validCookieName reports whether name is a valid RFC 6265 cookie token.
func validCookieName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r >= 0x7f || strings.ContainsRune("()<>@,;:\\\"/[]?={}", r) {
			return false
		}
	}
	return true
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
