// Package services – DealService
//
// This file implements DealService, the application-level component that owns
// the deal lifecycle: creation with plan enforcement and signing, cache-first
// reads with store fallback, cancellation, the business dashboard listing,
// flash listings, and city stats.
//
// The cache is advisory throughout: every cache failure on a read path falls
// back to the store, and every cache failure on a write path is logged and
// swallowed because entries self-expire.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include deal/business identifiers where applicable.

package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/cache"
	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/events"
	"github.com/neardeal/go-deals-backend/internal/repo"
	"github.com/neardeal/go-deals-backend/internal/signer"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DealCache is the cache surface the services need. *cache.GeoCache satisfies
// it; tests may substitute a fake.
type DealCache interface {
	PutSnapshot(ctx context.Context, snap domain.DealSnapshot) error
	GetSnapshot(ctx context.Context, dealID string) (*domain.DealSnapshot, error)
	Invalidate(ctx context.Context, dealID string) error
	IndexLocation(ctx context.Context, city, dealID string, lat, lng float64) error
	RemoveFromIndex(ctx context.Context, city, dealID string) error
	QueryRadius(ctx context.Context, city string, lat, lng, radiusKm float64, limit int) ([]cache.Candidate, error)
	MarkFlash(ctx context.Context, city, dealID string, remaining time.Duration) error
	UnmarkFlash(ctx context.Context, city, dealID string) error
	ListFlash(ctx context.Context, city string) ([]string, error)
	IncrCityCounter(ctx context.Context, kind, city string, delta int64) error
	CityStats(ctx context.Context, city string) (cache.CityCounters, bool, error)
	IncrBusinessRedemptions(ctx context.Context, businessID string) error
	BusinessRedemptions(ctx context.Context, businessID string) (int64, bool, error)
}

var _ DealCache = (*cache.GeoCache)(nil)

// CreateDealInput carries the caller-supplied fields for a new deal.
type CreateDealInput struct {
	Title           string
	Description     string
	Category        string
	OriginalPrice   float64
	DiscountedPrice float64
	MaxClaims       int
	Latitude        float64
	Longitude       float64
	District        string
	City            string
	ImageURL        string
	IsFlash         bool
	FlashExpiresAt  *time.Time
	ExpiresAt       time.Time
}

// DealView is a snapshot annotated with the viewer's relationship to the deal.
type DealView struct {
	domain.DealSnapshot
	IsSaved    bool `json:"is_saved"`
	HasClaimed bool `json:"has_claimed"`
}

// CityStatsView is the per-city activity summary.
type CityStatsView struct {
	City        string `json:"city"`
	ActiveDeals int64  `json:"active_deals"`
	Claims      int64  `json:"claims"`
	Redemptions int64  `json:"redemptions"`
	Source      string `json:"source"`
}

// DealService coordinates deal persistence, caching, and lifecycle events.
type DealService struct {
	DB      *gorm.DB
	Cache   DealCache
	Signer  *signer.Signer
	Emitter events.Emitter
	Plans   *PlanEnforcer
	Log     zerolog.Logger
}

func (s *DealService) emit(ctx context.Context, ev domain.Event) {
	if s.Emitter != nil {
		s.Emitter.Emit(ctx, ev)
	}
}

// validate checks the creation payload without touching any collaborator.
func (in *CreateDealInput) validate(now time.Time) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Category) == "" ||
		strings.TrimSpace(in.City) == "" {
		return ErrInvalidDeal
	}
	if in.MaxClaims <= 0 {
		return ErrInvalidDeal
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return ErrInvalidDeal
	}
	if !in.ExpiresAt.After(now) {
		return ErrInvalidDeal
	}
	if in.OriginalPrice <= 0 || in.DiscountedPrice < 0 || in.DiscountedPrice >= in.OriginalPrice {
		return ErrInvalidPricing
	}
	if in.IsFlash {
		if in.FlashExpiresAt == nil || !in.FlashExpiresAt.After(now) || in.FlashExpiresAt.After(in.ExpiresAt) {
			return ErrInvalidDeal
		}
	}
	return nil
}

// Create validates, enforces the plan, persists, signs, and indexes a new
// deal. Cache population and the lifecycle event are best-effort side
// effects.
func (s *DealService) Create(ctx context.Context, businessID string, in CreateDealInput) (*domain.DealSnapshot, error) {
	tr := otel.Tracer("services/DealService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("business.id", businessID)),
	)
	defer span.End()

	now := time.Now().UTC()
	if err := in.validate(now); err != nil {
		return nil, err
	}
	if s.Plans != nil {
		if err := s.Plans.AllowDealCreation(ctx, businessID, in.IsFlash, now); err != nil {
			return nil, err
		}
	}

	d := &domain.Deal{
		ID:              uuid.NewString(),
		BusinessID:      businessID,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Category:        strings.ToLower(strings.TrimSpace(in.Category)),
		OriginalPrice:   in.OriginalPrice,
		DiscountedPrice: in.DiscountedPrice,
		MaxClaims:       in.MaxClaims,
		Status:          domain.DealStatusActive,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		District:        strings.TrimSpace(in.District),
		City:            cache.NormalizeCity(in.City),
		ImageURL:        strings.TrimSpace(in.ImageURL),
		IsFlash:         in.IsFlash,
		FlashExpiresAt:  in.FlashExpiresAt,
		ExpiresAt:       in.ExpiresAt.UTC(),
	}

	// The deal credential binds the deal to its business at creation time.
	sig, err := s.Signer.Sign(ctx, d.ID, d.BusinessID, "deal")
	if err != nil {
		return nil, err
	}
	d.QRSignature = sig

	if err := repo.CreateDeal(ctx, s.DB, d); err != nil {
		return nil, err
	}

	snap := d.Snapshot()
	s.populateCache(ctx, d, now)

	s.emit(ctx, domain.Event{
		Type:       domain.EventDealCreated,
		DealID:     d.ID,
		BusinessID: d.BusinessID,
		City:       d.City,
		DealTitle:  d.Title,
		OccurredAt: now,
	})

	return &snap, nil
}

// populateCache writes the snapshot, spatial index entry, flash marker, and
// city counter. Failures are logged only.
func (s *DealService) populateCache(ctx context.Context, d *domain.Deal, now time.Time) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.PutSnapshot(ctx, d.Snapshot()); err != nil {
		s.Log.Warn().Err(err).Str("deal_id", d.ID).Msg("snapshot cache write failed")
	}
	if err := s.Cache.IndexLocation(ctx, d.City, d.ID, d.Latitude, d.Longitude); err != nil {
		s.Log.Warn().Err(err).Str("deal_id", d.ID).Msg("geo index write failed")
	}
	if d.IsFlash && d.FlashExpiresAt != nil {
		if err := s.Cache.MarkFlash(ctx, d.City, d.ID, d.FlashExpiresAt.Sub(now)); err != nil {
			s.Log.Warn().Err(err).Str("deal_id", d.ID).Msg("flash marker write failed")
		}
	}
	if err := s.Cache.IncrCityCounter(ctx, "deals", d.City, 1); err != nil {
		s.Log.Warn().Err(err).Str("city", d.City).Msg("city counter bump failed")
	}
}

// Get returns the external view of a deal, cache-first with store fallback,
// annotated with the viewer's save/claim state. viewerID may be empty for
// anonymous reads.
func (s *DealService) Get(ctx context.Context, dealID, viewerID string) (*DealView, error) {
	tr := otel.Tracer("services/DealService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("deal.id", dealID)),
	)
	defer span.End()

	snap, err := s.resolveSnapshot(ctx, dealID)
	if err != nil {
		return nil, err
	}

	view := &DealView{DealSnapshot: *snap}
	if viewerID != "" {
		if saved, serr := repo.HasSaved(ctx, s.DB, viewerID, dealID); serr == nil {
			view.IsSaved = saved
		} else {
			s.Log.Warn().Err(serr).Str("deal_id", dealID).Msg("save lookup failed")
		}
		if _, cerr := repo.GetClaimByDealConsumer(ctx, s.DB, dealID, viewerID); cerr == nil {
			view.HasClaimed = true
		} else if !errors.Is(cerr, gorm.ErrRecordNotFound) {
			s.Log.Warn().Err(cerr).Str("deal_id", dealID).Msg("claim lookup failed")
		}
	}
	return view, nil
}

// resolveSnapshot reads the cache and falls back to the store, repopulating
// the cache on a miss.
func (s *DealService) resolveSnapshot(ctx context.Context, dealID string) (*domain.DealSnapshot, error) {
	if s.Cache != nil {
		snap, err := s.Cache.GetSnapshot(ctx, dealID)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.Log.Warn().Err(err).Str("deal_id", dealID).Msg("cache read failed, using store")
		}
	}

	d, err := repo.GetDeal(ctx, s.DB, dealID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	snap := d.Snapshot()
	if s.Cache != nil {
		if cerr := s.Cache.PutSnapshot(ctx, snap); cerr != nil {
			s.Log.Warn().Err(cerr).Str("deal_id", dealID).Msg("cache repopulate failed")
		}
	}
	return &snap, nil
}

// Cancel transitions a deal from active to cancelled and tears down its cache
// footprint. Only the owning business may cancel.
func (s *DealService) Cancel(ctx context.Context, businessID, dealID string) error {
	tr := otel.Tracer("services/DealService")
	ctx, span := tr.Start(ctx, "Cancel",
		trace.WithAttributes(
			attribute.String("deal.id", dealID),
			attribute.String("business.id", businessID),
		),
	)
	defer span.End()

	d, err := repo.GetDeal(ctx, s.DB, dealID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDealNotFound
	}
	if err != nil {
		return err
	}
	if d.BusinessID != businessID {
		return ErrWrongBusiness
	}

	err = repo.TransitionDealStatus(ctx, s.DB, dealID, domain.DealStatusActive, domain.DealStatusCancelled)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDealNotActive
	}
	if err != nil {
		return err
	}

	s.evictCache(ctx, d)

	s.emit(ctx, domain.Event{
		Type:       domain.EventDealCancelled,
		DealID:     d.ID,
		BusinessID: d.BusinessID,
		City:       d.City,
		DealTitle:  d.Title,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// evictCache removes every cache trace of a deal that left the active state.
func (s *DealService) evictCache(ctx context.Context, d *domain.Deal) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, d.ID); err != nil {
		s.Log.Warn().Err(err).Str("deal_id", d.ID).Msg("cache invalidate failed")
	}
	if err := s.Cache.RemoveFromIndex(ctx, d.City, d.ID); err != nil {
		s.Log.Warn().Err(err).Str("deal_id", d.ID).Msg("geo index removal failed")
	}
	if d.IsFlash {
		if err := s.Cache.UnmarkFlash(ctx, d.City, d.ID); err != nil {
			s.Log.Warn().Err(err).Str("deal_id", d.ID).Msg("flash marker removal failed")
		}
	}
	if err := s.Cache.IncrCityCounter(ctx, "deals", d.City, -1); err != nil {
		s.Log.Warn().Err(err).Str("city", d.City).Msg("city counter decrement failed")
	}
}

// ListBusiness returns a page of the business's deals, newest first.
func (s *DealService) ListBusiness(ctx context.Context, businessID string, page, pageSize int) ([]domain.Deal, int64, error) {
	tr := otel.Tracer("services/DealService")
	ctx, span := tr.Start(ctx, "ListBusiness",
		trace.WithAttributes(
			attribute.String("business.id", businessID),
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

	total, err := repo.CountBusinessDeals(ctx, s.DB, businessID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Deal{}, 0, nil
	}
	items, err := repo.ListBusinessDeals(ctx, s.DB, businessID, offset, pageSize)
	return items, total, err
}

// ListFlash returns the city's live flash deals, soonest-ending first. The
// flash markers in the cache are the fast path; any gap falls back to the
// store.
func (s *DealService) ListFlash(ctx context.Context, city string, limit int) ([]domain.DealSnapshot, error) {
	tr := otel.Tracer("services/DealService")
	ctx, span := tr.Start(ctx, "ListFlash",
		trace.WithAttributes(attribute.String("city", city)),
	)
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	now := time.Now().UTC()

	if s.Cache != nil {
		ids, err := s.Cache.ListFlash(ctx, city)
		if err != nil {
			s.Log.Warn().Err(err).Str("city", city).Msg("flash scan failed, using store")
		} else if len(ids) > 0 {
			snaps := s.resolveMany(ctx, ids)
			out := make([]domain.DealSnapshot, 0, len(snaps))
			for _, sn := range snaps {
				if sn.Status == domain.DealStatusActive && sn.ExpiresAt.After(now) {
					out = append(out, sn)
				}
			}
			sortByFlashExpiry(out)
			if len(out) > limit {
				out = out[:limit]
			}
			return out, nil
		}
	}

	deals, err := repo.ListActiveFlashDeals(ctx, s.DB, cache.NormalizeCity(city), now, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DealSnapshot, 0, len(deals))
	for i := range deals {
		out = append(out, deals[i].Snapshot())
	}
	return out, nil
}

// resolveMany resolves snapshots for the given ids, cache-first, batch
// fetching misses from the store and repopulating the cache. Unknown ids are
// dropped.
func (s *DealService) resolveMany(ctx context.Context, ids []string) []domain.DealSnapshot {
	out := make([]domain.DealSnapshot, 0, len(ids))
	var misses []string
	for _, id := range ids {
		if s.Cache != nil {
			if snap, err := s.Cache.GetSnapshot(ctx, id); err == nil {
				out = append(out, *snap)
				continue
			}
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return out
	}

	deals, err := repo.GetDealsByIDs(ctx, s.DB, misses)
	if err != nil {
		s.Log.Warn().Err(err).Int("misses", len(misses)).Msg("store batch fetch failed")
		return out
	}
	for i := range deals {
		snap := deals[i].Snapshot()
		out = append(out, snap)
		if s.Cache != nil {
			if cerr := s.Cache.PutSnapshot(ctx, snap); cerr != nil {
				s.Log.Warn().Err(cerr).Str("deal_id", snap.DealID).Msg("cache repopulate failed")
			}
		}
	}
	return out
}

// CityStats reports per-city activity, preferring cache counters and falling
// back to authoritative store aggregates when the counters are cold.
func (s *DealService) CityStats(ctx context.Context, city string) (*CityStatsView, error) {
	tr := otel.Tracer("services/DealService")
	ctx, span := tr.Start(ctx, "CityStats",
		trace.WithAttributes(attribute.String("city", city)),
	)
	defer span.End()

	normalized := cache.NormalizeCity(city)

	if s.Cache != nil {
		counters, ok, err := s.Cache.CityStats(ctx, normalized)
		if err != nil {
			s.Log.Warn().Err(err).Str("city", normalized).Msg("counter read failed, using store")
		} else if ok {
			return &CityStatsView{
				City:        normalized,
				ActiveDeals: counters.Deals,
				Claims:      counters.Claims,
				Redemptions: counters.Redemptions,
				Source:      "cache",
			}, nil
		}
	}

	active, claims, redemptions, err := repo.CityStats(ctx, s.DB, normalized, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &CityStatsView{
		City:        normalized,
		ActiveDeals: active,
		Claims:      claims,
		Redemptions: redemptions,
		Source:      "store",
	}, nil
}

// sortByFlashExpiry orders snapshots by the flash window end, earliest first,
// falling back to the regular expiry when the marker is absent.
func sortByFlashExpiry(snaps []domain.DealSnapshot) {
	end := func(s domain.DealSnapshot) time.Time {
		if s.FlashExpiresAt != nil {
			return *s.FlashExpiresAt
		}
		return s.ExpiresAt
	}
	sort.Slice(snaps, func(i, j int) bool { return end(snaps[i]).Before(end(snaps[j])) })
}
