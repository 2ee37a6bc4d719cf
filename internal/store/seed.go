// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/salon-go/internal/auth"
)

// SeedOptions controls what Seed inserts.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	// StarterServices inserts a few service cards when the table is empty.
	StarterServices bool
}

// starterServices are the service cards shown on a fresh install.
var starterServices = []CreateServiceParams{
	{Title: "Haircut & Styling", Description: "Precision cuts and styling tailored to your face shape and lifestyle.", Iconsrc: "/icons/scissors.svg", Icontype: "image", Iconalt: "Scissors"},
	{Title: "Hair Coloring", Description: "Balayage, highlights and full color using gentle, professional products.", Iconsrc: "/icons/color.svg", Icontype: "image", Iconalt: "Color palette"},
	{Title: "Treatments", Description: "Deep conditioning and keratin treatments for healthy, shiny hair.", Iconsrc: "/icons/treatment.svg", Icontype: "image", Iconalt: "Treatment bottle"},
	{Title: "Manicure", Description: "Classic and gel manicures in a relaxing setting.", Iconsrc: "/icons/nails.svg", Icontype: "image", Iconalt: "Nail polish"},
}

// Seed creates initial data in the database.
func Seed(ctx context.Context, q *Queries, opts SeedOptions) error {
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if err := seedAdmin(ctx, q, opts.AdminEmail, opts.AdminPassword); err != nil {
			return err
		}
	}

	if opts.StarterServices {
		if err := seedServices(ctx, q); err != nil {
			return err
		}
	}

	return nil
}

func seedAdmin(ctx context.Context, q *Queries, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := q.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed", "email", email)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "email", user.Email)
	return nil
}

func seedServices(ctx context.Context, q *Queries) error {
	count, err := q.CountServices(ctx)
	if err != nil {
		return fmt.Errorf("counting services: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	for _, s := range starterServices {
		s.CreatedAt = now
		s.UpdatedAt = now
		if _, err := q.CreateService(ctx, s); err != nil {
			return fmt.Errorf("creating service %q: %w", s.Title, err)
		}
	}

	slog.Info("seeded starter services", "count", len(starterServices))
	return nil
}
