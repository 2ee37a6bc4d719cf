// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/salon-go/internal/auth"
	"github.com/olegiv/salon-go/internal/mail"
	"github.com/olegiv/salon-go/internal/model"
	"github.com/olegiv/salon-go/internal/store"
)

// Authentication errors. Handlers turn them into 400 responses.
var (
	ErrMissingFields      = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", model.MinPasswordLength)
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// AuthConfig configures the password reset flow.
type AuthConfig struct {
	SiteURL       string
	ResetTokenTTL time.Duration
	// RequireResetToken rejects password changes that do not carry the
	// token from the reset email.
	RequireResetToken bool
}

// AuthService checks admin credentials and runs the password reset flow.
type AuthService struct {
	queries *store.Queries
	mailer  mail.Mailer
	cfg     AuthConfig
	logger  *slog.Logger
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates an AuthService.
func NewAuthService(queries *store.Queries, mailer mail.Mailer, cfg AuthConfig, logger *slog.Logger) *AuthService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = 24 * time.Hour
	}
	return &AuthService{
		queries: queries,
		mailer:  mailer,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies the credentials and returns the matching user.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
// Hashes using old parameters or bcrypt are upgraded on success.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, ErrMissingFields
	}

	row, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		// Spend the same hashing time as a real check.
		_, _ = auth.CheckPassword(password, s.timingHash())
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	valid, err := auth.CheckPassword(password, row.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash could not be verified", "user_id", row.ID, "error", err, "category", model.EventCategoryAuth)
		return model.User{}, ErrInvalidCredentials
	}
	if !valid {
		return model.User{}, ErrInvalidCredentials
	}

	now := s.now()
	if auth.NeedsRehash(row.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			err = s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: hash,
				UpdatedAt:    now,
				ID:           row.ID,
			})
			if err != nil {
				s.logger.Warn("failed to upgrade password hash", "user_id", row.ID, "error", err)
			} else {
				row.PasswordHash = hash
				row.ResetToken = sql.NullString{}
				row.ResetTokenExpiration = sql.NullTime{}
			}
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, row.ID, now); err != nil {
		s.logger.Warn("failed to update last login", "user_id", row.ID, "error", err)
	} else {
		row.LastLoginAt = sql.NullTime{Time: now, Valid: true}
	}

	return toUser(row), nil
}

// RequestReset issues a new reset token for email and mails the reset link.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}

	row, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return err
	}

	now := s.now()
	err = s.queries.SetUserResetToken(ctx, store.SetUserResetTokenParams{
		ResetToken:           token,
		ResetTokenExpiration: now.Add(s.cfg.ResetTokenTTL),
		UpdatedAt:            now,
		ID:                   row.ID,
	})
	if err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	msg, err := mail.ResetEmail(s.cfg.SiteURL, row.Email, token, s.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return errors.New("sending reset email: no mailer configured")
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending reset email: %w", err)
	}
	return nil
}

// ResetPassword stores a new password for email and clears the reset token.
// A supplied token must match the stored one and be unexpired. Without a
// token the change is accepted unless RequireResetToken is set.
func (s *AuthService) ResetPassword(ctx context.Context, email, password, token string) error {
	email = normalizeEmail(email)
	token = strings.TrimSpace(token)
	if email == "" || password == "" {
		return ErrMissingFields
	}
	if len([]rune(password)) < model.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if token == "" && s.cfg.RequireResetToken {
		return ErrInvalidResetToken
	}

	row, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	if token != "" && !toUser(row).HasValidResetToken(token, s.now()) {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	err = s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    s.now(),
		ID:           row.ID,
	})
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// PurgeExpiredResetTokens clears reset tokens that expired before now.
func (s *AuthService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.queries.ClearExpiredResetTokens(ctx, s.now())
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("salon-timing-equalizer")
	})
	return s.dummyHash
}

func toUser(r store.User) model.User {
	return model.User{
		ID:                   r.ID,
		Email:                r.Email,
		PasswordHash:         r.PasswordHash,
		ResetToken:           r.ResetToken.String,
		ResetTokenExpiration: r.ResetTokenExpiration,
		LastLoginAt:          r.LastLoginAt,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}
