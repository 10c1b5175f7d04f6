// Package services – ProfileService
//
// Consumer profile reads/updates and bookmark (saved deal) management.

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProfileService owns consumer profile state and saved deals.
type ProfileService struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// Get returns the consumer profile, or ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, consumerID string) (*domain.ConsumerProfile, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("consumer.id", consumerID)),
	)
	defer span.End()

	p, err := repo.GetConsumerProfile(ctx, s.DB, consumerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// Update sets the caller-editable profile fields, creating the profile on
// first write.
func (s *ProfileService) Update(ctx context.Context, consumerID, displayName, city string) (*domain.ConsumerProfile, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("consumer.id", consumerID)),
	)
	defer span.End()

	displayName = strings.TrimSpace(displayName)
	city = strings.TrimSpace(city)

	err := repo.UpdateConsumerProfile(ctx, s.DB, consumerID, displayName, city)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p := &domain.ConsumerProfile{ID: consumerID, DisplayName: displayName, City: city}
		if cerr := s.DB.WithContext(ctx).Create(p).Error; cerr != nil {
			return nil, cerr
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return repo.GetConsumerProfile(ctx, s.DB, consumerID)
}

// ToggleSave flips the bookmark state for the deal, verifying the deal exists
// first so bookmarks never dangle.
func (s *ProfileService) ToggleSave(ctx context.Context, consumerID, dealID string) (bool, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "ToggleSave",
		trace.WithAttributes(
			attribute.String("consumer.id", consumerID),
			attribute.String("deal.id", dealID),
		),
	)
	defer span.End()

	d, err := repo.GetDeal(ctx, s.DB, dealID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrDealNotFound
	}
	if err != nil {
		return false, err
	}
	return repo.ToggleSave(ctx, s.DB, consumerID, dealID, d.Title)
}

// ListSaves returns paginated bookmarks for a consumer, newest first.
func (s *ProfileService) ListSaves(ctx context.Context, consumerID string, page, pageSize int) ([]domain.SavedDeal, int64, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "ListSaves",
		trace.WithAttributes(
			attribute.String("consumer.id", consumerID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountConsumerSaves(ctx, s.DB, consumerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.SavedDeal{}, 0, nil
	}
	items, err := repo.ListConsumerSaves(ctx, s.DB, consumerID, offset, pageSize)
	return items, total, err
}
