// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job schedules in standard cron syntax.
const (
	ResetTokenSchedule = "0 * * * *"
	EventPruneSchedule = "30 3 * * *"
)

// DefaultEventRetention is how long audit events are kept.
const DefaultEventRetention = 90 * 24 * time.Hour

// rateLimiterMaxSize is the number of tracked clients above which a
// rate limiter is reset.
const rateLimiterMaxSize = 10000

const jobTimeout = time.Minute

// TokenPurger clears expired password reset tokens.
type TokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

// EventPruner deletes old audit events.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// LimiterCleaner drops per-client rate limiters once too many are tracked.
type LimiterCleaner interface {
	Cleanup(maxSize int)
}

// Config wires the scheduler to the services it maintains.
// Nil fields skip the corresponding job.
type Config struct {
	Tokens         TokenPurger
	Events         EventPruner
	RateLimiters   []LimiterCleaner
	EventRetention time.Duration
}

// Scheduler handles background maintenance like expiring reset tokens.
type Scheduler struct {
	cron   *cron.Cron
	cfg    Config
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.EventRetention <= 0 {
		cfg.EventRetention = DefaultEventRetention
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the maintenance jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(ResetTokenSchedule, func() {
		if err := s.purgeResetTokens(); err != nil {
			s.logger.Error("failed to purge expired reset tokens", "error", err, "category", "auth")
		}
		s.cleanupLimiters()
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(EventPruneSchedule, func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune old events", "error", err, "category", "system")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Entries returns the registered cron entries.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) cleanupLimiters() {
	for _, l := range s.cfg.RateLimiters {
		l.Cleanup(rateLimiterMaxSize)
	}
}

// purgeResetTokens clears reset tokens whose expiration has passed.
func (s *Scheduler) purgeResetTokens() error {
	if s.cfg.Tokens == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.cfg.Tokens.PurgeExpiredResetTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("purged expired reset tokens", "count", n)
	}
	return nil
}

// pruneEvents deletes audit events older than the retention period.
func (s *Scheduler) pruneEvents() error {
	if s.cfg.Events == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.cfg.Events.DeleteOldEvents(ctx, s.cfg.EventRetention)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned old events", "count", n, "retention", s.cfg.EventRetention)
	}
	return nil
}
