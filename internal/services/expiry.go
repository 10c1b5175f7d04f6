// Package services – ExpirySweeper
//
// The sweeper periodically moves lapsed deals from active to expired and runs
// the cleanup the original deletion feed would have driven: spatial index and
// snapshot eviction, flash marker removal, city counter decrement, the final
// analytics summary, and a business notification. Each step is idempotent so
// a crashed sweep can simply run again.

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/events"
	"github.com/neardeal/go-deals-backend/internal/repo"
)

// ExpirySweeper expires lapsed deals in batches.
type ExpirySweeper struct {
	DB      *gorm.DB
	Cache   DealCache
	Emitter events.Emitter
	Log     zerolog.Logger

	Interval  time.Duration
	BatchSize int
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				s.Log.Error().Err(err).Msg("expiry sweep failed")
			} else if n > 0 {
				s.Log.Info().Int("expired", n).Msg("expiry sweep completed")
			}
		}
	}
}

// SweepOnce expires one batch of lapsed deals and returns how many it
// processed.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (int, error) {
	batch := s.BatchSize
	if batch <= 0 {
		batch = 50
	}
	now := time.Now().UTC()

	deals, err := repo.ListExpiredActiveDeals(ctx, s.DB, now, batch)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range deals {
		d := &deals[i]
		if err := s.expire(ctx, d, now); err != nil {
			s.Log.Error().Err(err).Str("deal_id", d.ID).Msg("deal expiry failed")
			continue
		}
		processed++
	}
	return processed, nil
}

// expire transitions one deal and runs its cleanup.
func (s *ExpirySweeper) expire(ctx context.Context, d *domain.Deal, now time.Time) error {
	err := repo.TransitionDealStatus(ctx, s.DB, d.ID, domain.DealStatusActive, domain.DealStatusExpired)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// A concurrent sweep or cancellation got here first.
		return nil
	}
	if err != nil {
		return err
	}

	if s.Cache != nil {
		if cerr := s.Cache.RemoveFromIndex(ctx, d.City, d.ID); cerr != nil {
			s.Log.Warn().Err(cerr).Str("deal_id", d.ID).Msg("geo index removal failed")
		}
		if cerr := s.Cache.Invalidate(ctx, d.ID); cerr != nil {
			s.Log.Warn().Err(cerr).Str("deal_id", d.ID).Msg("cache invalidate failed")
		}
		if d.IsFlash {
			if cerr := s.Cache.UnmarkFlash(ctx, d.City, d.ID); cerr != nil {
				s.Log.Warn().Err(cerr).Str("deal_id", d.ID).Msg("flash marker removal failed")
			}
		}
		if cerr := s.Cache.IncrCityCounter(ctx, "deals", d.City, -1); cerr != nil {
			s.Log.Warn().Err(cerr).Str("city", d.City).Msg("city counter decrement failed")
		}
	}

	if serr := repo.UpsertDealSummary(ctx, s.DB, &domain.DealSummary{
		DealID:          d.ID,
		BusinessID:      d.BusinessID,
		Status:          domain.DealStatusExpired,
		FinalClaimCount: d.ClaimCount,
		ExpiredAt:       now,
	}); serr != nil {
		s.Log.Warn().Err(serr).Str("deal_id", d.ID).Msg("summary write failed")
	}

	if nerr := repo.CreateNotification(ctx, s.DB, &domain.Notification{
		BusinessID: d.BusinessID,
		DealID:     d.ID,
		Type:       "deal_expired",
		Title:      "Deal expired",
		Body:       fmt.Sprintf("%s has expired with %d of %d claims.", d.Title, d.ClaimCount, d.MaxClaims),
	}); nerr != nil {
		s.Log.Warn().Err(nerr).Str("deal_id", d.ID).Msg("notification write failed")
	}

	if s.Emitter != nil {
		s.Emitter.Emit(ctx, domain.Event{
			Type:       domain.EventDealExpired,
			DealID:     d.ID,
			BusinessID: d.BusinessID,
			City:       d.City,
			ClaimCount: d.ClaimCount,
			DealTitle:  d.Title,
			OccurredAt: now,
		})
	}
	return nil
}
