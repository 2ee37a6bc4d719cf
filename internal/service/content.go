// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/salon-go/internal/cache"
	"github.com/olegiv/salon-go/internal/media"
	"github.com/olegiv/salon-go/internal/model"
	"github.com/olegiv/salon-go/internal/store"
)

// MaxReviewListLimit caps the limit accepted by ListReviews.
const MaxReviewListLimit = 20

// ErrLimitReached is matched by every LimitError.
var ErrLimitReached = errors.New("content limit reached")

// LimitError reports that a collection is already at capacity.
type LimitError struct {
	Kind string
	Max  int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("at most %d %s allowed", e.Max, e.Kind)
}

// Is makes errors.Is(err, ErrLimitReached) true.
func (e *LimitError) Is(target error) bool {
	return target == ErrLimitReached
}

// ContentLimits caps the number of stored services and gallery items.
type ContentLimits struct {
	MaxServices     int
	MaxGalleryItems int
}

// ContentService manages services, gallery items and reviews.
// Public lists are served through the cache and invalidated on writes.
type ContentService struct {
	queries *store.Queries
	media   *media.Processor
	cache   cache.Cache
	limits  ContentLimits
	logger  *slog.Logger
	now     func() time.Time

	services *cache.TypedCache[[]model.Service]
	gallery  *cache.TypedCache[[]model.GalleryItem]
	reviews  *cache.TypedCache[[]model.Review]

	// writeMu keeps count checks and inserts consistent within this process.
	writeMu sync.Mutex
}

// NewContentService creates a ContentService.
func NewContentService(queries *store.Queries, c cache.Cache, mp *media.Processor, limits ContentLimits, ttl time.Duration, logger *slog.Logger) *ContentService {
	return &ContentService{
		queries:  queries,
		media:    mp,
		cache:    c,
		limits:   limits,
		logger:   logger,
		now:      time.Now,
		services: cache.NewTypedCache[[]model.Service](c, ttl),
		gallery:  cache.NewTypedCache[[]model.GalleryItem](c, ttl),
		reviews:  cache.NewTypedCache[[]model.Review](c, ttl),
	}
}

// ListServices returns all services in insertion order.
func (s *ContentService) ListServices(ctx context.Context) ([]model.Service, error) {
	list, err := s.services.GetOrSet(ctx, cache.KeyServices, func() (*[]model.Service, error) {
		rows, err := s.queries.ListServices(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing services: %w", err)
		}
		out := make([]model.Service, 0, len(rows))
		for _, r := range rows {
			out = append(out, toService(r))
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// CreateService validates and stores a new service. A zero input creates
// the "New Service" placeholder.
func (s *ContentService) CreateService(ctx context.Context, in model.ServiceInput) (model.Service, error) {
	if in == (model.ServiceInput{}) {
		in = model.NewServiceDraft()
	}
	if err := s.prepareService(&in); err != nil {
		return model.Service{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	count, err := s.queries.CountServices(ctx)
	if err != nil {
		return model.Service{}, fmt.Errorf("counting services: %w", err)
	}
	if count >= int64(s.limits.MaxServices) {
		return model.Service{}, &LimitError{Kind: "services", Max: s.limits.MaxServices}
	}

	now := s.now()
	row, err := s.queries.CreateService(ctx, store.CreateServiceParams{
		Title:       in.Title,
		Description: in.Description,
		Iconsrc:     in.IconSrc,
		Icontype:    string(in.IconType),
		Iconalt:     in.IconAlt,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Service{}, fmt.Errorf("creating service: %w", err)
	}

	s.invalidate(ctx, cache.KeyServices)
	return toService(row), nil
}

// UpdateService replaces the fields of service id.
// Returns an error wrapping sql.ErrNoRows when it does not exist.
func (s *ContentService) UpdateService(ctx context.Context, id int64, in model.ServiceInput) (model.Service, error) {
	if err := s.prepareService(&in); err != nil {
		return model.Service{}, err
	}

	row, err := s.queries.UpdateService(ctx, store.UpdateServiceParams{
		Title:       in.Title,
		Description: in.Description,
		Iconsrc:     in.IconSrc,
		Icontype:    string(in.IconType),
		Iconalt:     in.IconAlt,
		UpdatedAt:   s.now(),
		ID:          id,
	})
	if err != nil {
		return model.Service{}, fmt.Errorf("updating service %d: %w", id, err)
	}

	s.invalidate(ctx, cache.KeyServices)
	return toService(row), nil
}

// DeleteService removes service id.
func (s *ContentService) DeleteService(ctx context.Context, id int64) error {
	if err := s.queries.DeleteService(ctx, id); err != nil {
		return fmt.Errorf("deleting service %d: %w", id, err)
	}
	s.invalidate(ctx, cache.KeyServices)
	return nil
}

func (s *ContentService) prepareService(in *model.ServiceInput) error {
	in.Normalize()
	in.Title = plainText(in.Title)
	in.IconAlt = plainText(in.IconAlt)
	if err := in.Validate(); err != nil {
		return err
	}

	res, err := s.media.Process(in.IconSrc, in.IconType)
	if err != nil {
		return mediaValidationError("iconsrc", err)
	}
	in.IconSrc = res.Src
	in.IconType = res.Type
	return nil
}

// ListGalleryItems returns all gallery items in insertion order.
func (s *ContentService) ListGalleryItems(ctx context.Context) ([]model.GalleryItem, error) {
	list, err := s.gallery.GetOrSet(ctx, cache.KeyGallery, func() (*[]model.GalleryItem, error) {
		rows, err := s.queries.ListGalleryItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing gallery: %w", err)
		}
		out := make([]model.GalleryItem, 0, len(rows))
		for _, r := range rows {
			out = append(out, toGalleryItem(r))
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// CreateGalleryItem validates and stores a new gallery item.
func (s *ContentService) CreateGalleryItem(ctx context.Context, in model.GalleryInput) (model.GalleryItem, error) {
	if err := s.prepareGalleryItem(&in); err != nil {
		return model.GalleryItem{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	count, err := s.queries.CountGalleryItems(ctx)
	if err != nil {
		return model.GalleryItem{}, fmt.Errorf("counting gallery: %w", err)
	}
	if count >= int64(s.limits.MaxGalleryItems) {
		return model.GalleryItem{}, &LimitError{Kind: "gallery items", Max: s.limits.MaxGalleryItems}
	}

	row, err := s.queries.CreateGalleryItem(ctx, store.CreateGalleryItemParams{
		Src:       in.Src,
		Alt:       in.Alt,
		Type:      string(in.Type),
		CreatedAt: s.now(),
	})
	if err != nil {
		return model.GalleryItem{}, fmt.Errorf("creating gallery item: %w", err)
	}

	s.invalidate(ctx, cache.KeyGallery)
	return toGalleryItem(row), nil
}

// UpdateGalleryItem replaces the fields of gallery item id.
func (s *ContentService) UpdateGalleryItem(ctx context.Context, id int64, in model.GalleryInput) (model.GalleryItem, error) {
	if err := s.prepareGalleryItem(&in); err != nil {
		return model.GalleryItem{}, err
	}

	row, err := s.queries.UpdateGalleryItem(ctx, store.UpdateGalleryItemParams{
		Src:  in.Src,
		Alt:  in.Alt,
		Type: string(in.Type),
		ID:   id,
	})
	if err != nil {
		return model.GalleryItem{}, fmt.Errorf("updating gallery item %d: %w", id, err)
	}

	s.invalidate(ctx, cache.KeyGallery)
	return toGalleryItem(row), nil
}

// DeleteGalleryItem removes gallery item id.
func (s *ContentService) DeleteGalleryItem(ctx context.Context, id int64) error {
	if err := s.queries.DeleteGalleryItem(ctx, id); err != nil {
		return fmt.Errorf("deleting gallery item %d: %w", id, err)
	}
	s.invalidate(ctx, cache.KeyGallery)
	return nil
}

// prepareGalleryItem normalizes the input and resolves the media type.
// An empty type is taken from the processed source.
func (s *ContentService) prepareGalleryItem(in *model.GalleryInput) error {
	in.Normalize()
	in.Alt = plainText(in.Alt)

	errs := model.ValidationErrors{}
	if in.Src == "" {
		errs.Add("src", "Media source is required")
	}
	if in.Type != "" && !in.Type.Valid() {
		errs.Add("type", "Type must be image or video")
	}
	if len(errs) > 0 {
		return errs
	}

	res, err := s.media.Process(in.Src, in.Type)
	if err != nil {
		return mediaValidationError("src", err)
	}
	in.Src = res.Src
	in.Type = res.Type

	return in.Validate()
}

// ListReviews returns the latest reviews, newest first. Limits outside
// 1..MaxReviewListLimit are clamped, zero means the default of three.
func (s *ContentService) ListReviews(ctx context.Context, limit int) ([]model.Review, error) {
	switch {
	case limit <= 0:
		limit = model.DefaultReviewLimit
	case limit > MaxReviewListLimit:
		limit = MaxReviewListLimit
	}

	list, err := s.reviews.GetOrSet(ctx, cache.ReviewsKey(limit), func() (*[]model.Review, error) {
		rows, err := s.queries.ListLatestReviews(ctx, int64(limit))
		if err != nil {
			return nil, fmt.Errorf("listing reviews: %w", err)
		}
		out := make([]model.Review, 0, len(rows))
		for _, r := range rows {
			out = append(out, toReview(r))
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// CreateReview validates and stores a visitor review. Name and text are kept
// as submitted (trimmed and NFC normalized); reviews are served as JSON and
// escaped by whatever renders them.
func (s *ContentService) CreateReview(ctx context.Context, in model.ReviewInput) (model.Review, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return model.Review{}, err
	}

	row, err := s.queries.CreateReview(ctx, store.CreateReviewParams{
		Name:      in.Name,
		Text:      in.Text,
		Rating:    int64(in.Rating),
		CreatedAt: s.now(),
	})
	if err != nil {
		return model.Review{}, fmt.Errorf("creating review: %w", err)
	}

	if err := s.cache.DeleteByPrefix(ctx, cache.PrefixReviews); err != nil {
		s.logger.Warn("failed to invalidate reviews cache", "error", err, "category", model.EventCategoryCache)
	}
	return toReview(row), nil
}

func (s *ContentService) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate content cache", "key", key, "error", err, "category", model.EventCategoryCache)
	}
}

func mediaValidationError(field string, err error) error {
	msg := "Media source is invalid"
	switch {
	case errors.Is(err, media.ErrTooLarge):
		msg = "Media file is too large"
	case errors.Is(err, media.ErrUnsupported):
		msg = "Unsupported media format"
	case errors.Is(err, media.ErrInvalidSource):
		msg = "Media source must be an uploaded file, a site path or an http(s) URL"
	}
	return model.ValidationErrors{field: msg}
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func toService(r store.Service) model.Service {
	return model.Service{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		DescriptionHTML: renderDescription(r.Description),
		IconSrc:         r.Iconsrc,
		IconType:        model.MediaType(r.Icontype),
		IconAlt:         r.Iconalt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toGalleryItem(r store.GalleryItem) model.GalleryItem {
	return model.GalleryItem{
		ID:        r.ID,
		Src:       r.Src,
		Alt:       r.Alt,
		Type:      model.MediaType(r.Type),
		CreatedAt: r.CreatedAt,
	}
}

func toReview(r store.Review) model.Review {
	return model.Review{
		ID:        r.ID,
		Name:      r.Name,
		Text:      r.Text,
		Rating:    int(r.Rating),
		CreatedAt: r.CreatedAt,
	}
}
