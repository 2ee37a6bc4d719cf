// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic for authentication, site content
// and the audit event log.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/salon-go/internal/model"
	"github.com/olegiv/salon-go/internal/store"
)

// RequestInfo carries the request details recorded with an audit event.
type RequestInfo struct {
	IP        string
	URL       string
	UserAgent string
}

// EventService provides event logging functionality.
type EventService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(queries *store.Queries, logger *slog.Logger) *EventService {
	return &EventService{
		queries: queries,
		logger:  logger,
		now:     time.Now,
	}
}

// LogEvent creates a new event log entry. User-agent details are added to
// the metadata when present.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, req RequestInfo, metadata map[string]any) error {
	if req.UserAgent != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		ua := parseUserAgent(req.UserAgent)
		metadata["browser"] = ua.Browser
		metadata["os"] = ua.OS
		metadata["device"] = ua.DeviceType
	}

	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:      level,
		Category:   category,
		Message:    message,
		Metadata:   metadataJSON,
		IpAddress:  req.IP,
		RequestUrl: req.URL,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.logger.Warn("failed to record event", "error", err, "category", category)
		return err
	}
	return nil
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, req RequestInfo, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, req, metadata)
}

// LogContentEvent logs a change to services or gallery items.
func (s *EventService) LogContentEvent(ctx context.Context, level, message string, req RequestInfo, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryContent, message, req, metadata)
}

// LogReviewEvent logs a visitor review submission.
func (s *EventService) LogReviewEvent(ctx context.Context, level, message string, req RequestInfo, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryReview, message, req, metadata)
}

// ListEvents returns the most recent events, newest first.
func (s *EventService) ListEvents(ctx context.Context, limit, offset int64) ([]store.Event, error) {
	return s.queries.ListEvents(ctx, store.ListEventsParams{Limit: limit, Offset: offset})
}

// DeleteOldEvents removes events older than the specified duration and
// returns how many were deleted.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queries.DeleteEventsBefore(ctx, s.now().Add(-olderThan))
}

// parsedUA holds the parts of a user agent kept in event metadata.
type parsedUA struct {
	Browser    string
	OS         string
	DeviceType string
}

// parseUserAgent extracts browser, OS, and device type from a user agent string.
func parseUserAgent(uaString string) parsedUA {
	ua := useragent.Parse(uaString)

	result := parsedUA{
		Browser: ua.Name,
		OS:      ua.OS,
	}
	if result.Browser == "" {
		result.Browser = "Unknown"
	}
	if result.OS == "" {
		result.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		result.DeviceType = "mobile"
	case ua.Tablet:
		result.DeviceType = "tablet"
	case ua.Bot:
		result.DeviceType = "bot"
	default:
		result.DeviceType = "desktop"
	}

	return result
}
