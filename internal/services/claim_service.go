// Package services – ClaimService
//
// This file implements ClaimService, which owns the claim state machine:
// none -> claimed -> {redeemed | cancelled}. Claim creation is guarded twice,
// by the unique (deal, consumer) index and by the capped atomic increment of
// the deal's claim counter, both inside one transaction so a cap rejection
// also rolls back the claim row. Redemption is a conditional transition, so
// exactly one concurrent redemption wins.
//
// The redemption credential is produced at claim time; redemption only needs
// the code and the stored claim to re-verify it.

package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/events"
	"github.com/neardeal/go-deals-backend/internal/repo"
	"github.com/neardeal/go-deals-backend/internal/signer"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ClaimService coordinates claim creation, redemption, and listing.
type ClaimService struct {
	DB      *gorm.DB
	Cache   DealCache
	Signer  *signer.Signer
	Emitter events.Emitter
	Log     zerolog.Logger
}

func (s *ClaimService) emit(ctx context.Context, ev domain.Event) {
	if s.Emitter != nil {
		s.Emitter.Emit(ctx, ev)
	}
}

// Create reserves one unit of the deal for the consumer and returns the claim
// with its redemption credential.
func (s *ClaimService) Create(ctx context.Context, consumerID, dealID string) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("deal.id", dealID),
			attribute.String("consumer.id", consumerID),
		),
	)
	defer span.End()

	now := time.Now().UTC()

	d, err := repo.GetDeal(ctx, s.DB, dealID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DealStatusActive || !d.ExpiresAt.After(now) {
		return nil, ErrDealNotActive
	}
	// Fast-path duplicate check; the unique index is the real guard. Runs
	// before the cap check so a repeat claim on a full deal still reports
	// the duplicate, not the cap.
	if _, err := repo.GetClaimByDealConsumer(ctx, s.DB, dealID, consumerID); err == nil {
		return nil, ErrAlreadyClaimed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if d.ClaimCount >= d.MaxClaims {
		return nil, ErrMaxClaimsReached
	}

	claimID := uuid.NewString()
	token, err := s.Signer.Sign(ctx, claimID, dealID, consumerID)
	if err != nil {
		return nil, err
	}

	c := &domain.Claim{
		ID:              claimID,
		DealID:          dealID,
		ConsumerID:      consumerID,
		BusinessID:      d.BusinessID,
		DealTitle:       d.Title,
		OriginalPrice:   d.OriginalPrice,
		DiscountedPrice: d.DiscountedPrice,
		RedemptionCode:  signer.RedemptionCode(claimID, token),
		Status:          domain.ClaimStatusClaimed,
		ClaimedAt:       now,
		ExpiresAt:       d.ExpiresAt,
	}

	// Claim row and counter increment commit or roll back together, so the
	// counter can never exceed the cap and never counts a failed claim.
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateClaim(ctx, tx, c); err != nil {
			return err
		}
		return repo.IncrementClaimCount(ctx, tx, dealID)
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrAlreadyClaimed
	}
	if errors.Is(err, repo.ErrClaimCapReached) {
		return nil, ErrMaxClaimsReached
	}
	if err != nil {
		return nil, err
	}

	s.afterClaim(ctx, d, c, now)
	return c, nil
}

// afterClaim runs the best-effort side effects of a successful claim.
func (s *ClaimService) afterClaim(ctx context.Context, d *domain.Deal, c *domain.Claim, now time.Time) {
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, d.ID); err != nil {
			s.Log.Warn().Err(err).Str("deal_id", d.ID).Msg("cache invalidate failed")
		}
		if err := s.Cache.IncrCityCounter(ctx, "claims", d.City, 1); err != nil {
			s.Log.Warn().Err(err).Str("city", d.City).Msg("claim counter bump failed")
		}
	}
	if err := repo.BumpConsumerClaims(ctx, s.DB, c.ConsumerID); err != nil {
		s.Log.Warn().Err(err).Str("consumer_id", c.ConsumerID).Msg("profile claim counter failed")
	}
	s.emit(ctx, domain.Event{
		Type:       domain.EventDealClaimed,
		DealID:     d.ID,
		BusinessID: d.BusinessID,
		City:       d.City,
		ClaimID:    c.ID,
		ConsumerID: c.ConsumerID,
		ClaimCount: d.ClaimCount + 1,
		DealTitle:  d.Title,
		OccurredAt: now,
	})
}

// Redeem validates the credential and transitions the claim to redeemed on
// behalf of the owning business.
func (s *ClaimService) Redeem(ctx context.Context, businessID, claimID, redemptionCode string) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "Redeem",
		trace.WithAttributes(
			attribute.String("claim.id", claimID),
			attribute.String("business.id", businessID),
		),
	)
	defer span.End()

	codeClaimID, token, err := signer.ParseRedemptionCode(redemptionCode)
	if err != nil || codeClaimID != claimID {
		return nil, ErrBadRedemptionCode
	}

	c, err := repo.GetClaim(ctx, s.DB, claimID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.BusinessID != businessID {
		return nil, ErrWrongBusiness
	}
	switch c.Status {
	case domain.ClaimStatusClaimed:
	case domain.ClaimStatusRedeemed:
		// Exactly one redemption wins; everything after it is a conflict.
		return nil, ErrRedemptionConflict
	default:
		return nil, ErrClaimNotRedeemable
	}

	ok, err := s.Signer.Verify(ctx, c.ID, c.DealID, c.ConsumerID, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBadRedemptionCode
	}

	at := time.Now().UTC()
	err = repo.MarkClaimRedeemed(ctx, s.DB, c.ID, at)
	if errors.Is(err, repo.ErrStaleTransition) {
		return nil, ErrRedemptionConflict
	}
	if err != nil {
		return nil, err
	}
	c.Status = domain.ClaimStatusRedeemed
	c.RedeemedAt = &at

	s.afterRedeem(ctx, c, at)
	return c, nil
}

// afterRedeem runs the best-effort side effects of a successful redemption.
// None of them can undo the redemption.
func (s *ClaimService) afterRedeem(ctx context.Context, c *domain.Claim, at time.Time) {
	if err := repo.BumpRedemptionStreak(ctx, s.DB, c.ConsumerID, at); err != nil {
		s.Log.Warn().Err(err).Str("consumer_id", c.ConsumerID).Msg("streak update failed")
	}

	city := ""
	if d, err := repo.GetDeal(ctx, s.DB, c.DealID); err == nil {
		city = d.City
	}
	if s.Cache != nil {
		if city != "" {
			if err := s.Cache.IncrCityCounter(ctx, "redemptions", city, 1); err != nil {
				s.Log.Warn().Err(err).Str("city", city).Msg("redemption counter bump failed")
			}
		}
		if err := s.Cache.IncrBusinessRedemptions(ctx, c.BusinessID); err != nil {
			s.Log.Warn().Err(err).Str("business_id", c.BusinessID).Msg("business counter bump failed")
		}
	}
	s.emit(ctx, domain.Event{
		Type:       domain.EventClaimRedeemed,
		DealID:     c.DealID,
		BusinessID: c.BusinessID,
		City:       city,
		ClaimID:    c.ID,
		ConsumerID: c.ConsumerID,
		DealTitle:  c.DealTitle,
		OccurredAt: at,
	})
}

// ListPage returns paginated claims for a consumer, newest first.
func (s *ClaimService) ListPage(ctx context.Context, consumerID string, page, pageSize int) ([]domain.Claim, int64, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "ListPage",
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

	total, err := repo.CountConsumerClaims(ctx, s.DB, consumerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Claim{}, 0, nil
	}
	items, err := repo.ListConsumerClaims(ctx, s.DB, consumerID, offset, pageSize)
	return items, total, err
}
