// Package services – NearbyService
//
// This file implements the proximity query: spatial-index candidates,
// cache-first snapshot resolution with store fallback, liveness and category
// filtering, and a final distance sort. Results are eventually consistent
// with the store, bounded by the cache TTL.

package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/cache"
	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NearbyDeal is a snapshot with the distance from the query point attached.
type NearbyDeal struct {
	domain.DealSnapshot
	DistanceKm float64 `json:"distance_km"`
}

// NearbyQuery carries the parameters of one proximity search.
type NearbyQuery struct {
	City     string
	Lat      float64
	Lng      float64
	RadiusKm float64
	Category string
	Limit    int
}

// NearbyService answers proximity queries over the geo cache.
type NearbyService struct {
	DB    *gorm.DB
	Cache DealCache
	Log   zerolog.Logger

	DefaultRadiusKm float64
	MaxLimit        int
}

// Query runs the proximity search. An empty index or no matches yields an
// empty slice, never an error.
func (s *NearbyService) Query(ctx context.Context, q NearbyQuery) ([]NearbyDeal, error) {
	tr := otel.Tracer("services/NearbyService")
	ctx, span := tr.Start(ctx, "Query",
		trace.WithAttributes(
			attribute.String("city", q.City),
			attribute.Float64("radius_km", q.RadiusKm),
			attribute.Int("limit", q.Limit),
		),
	)
	defer span.End()

	if q.RadiusKm <= 0 {
		q.RadiusKm = s.DefaultRadiusKm
		if q.RadiusKm <= 0 {
			q.RadiusKm = 5
		}
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if s.MaxLimit > 0 && q.Limit > s.MaxLimit {
		q.Limit = s.MaxLimit
	}

	// Over-fetch to absorb losses from the liveness/category filters below.
	candidates, err := s.Cache.QueryRadius(ctx, q.City, q.Lat, q.Lng, q.RadiusKm, q.Limit*2)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []NearbyDeal{}, nil
	}

	distance := make(map[string]float64, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		distance[c.DealID] = c.DistanceKm
		ids = append(ids, c.DealID)
	}

	snaps := s.resolve(ctx, ids)

	now := time.Now().UTC()
	category := strings.ToLower(strings.TrimSpace(q.Category))
	out := make([]NearbyDeal, 0, len(snaps))
	for _, snap := range snaps {
		if snap.Status != domain.DealStatusActive || !snap.ExpiresAt.After(now) {
			continue
		}
		if snap.ClaimCount >= snap.MaxClaims {
			continue
		}
		if category != "" && snap.Category != category {
			continue
		}
		out = append(out, NearbyDeal{DealSnapshot: snap, DistanceKm: distance[snap.DealID]})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// resolve fetches snapshots cache-first, batch loading misses from the store
// and repopulating the cache.
func (s *NearbyService) resolve(ctx context.Context, ids []string) []domain.DealSnapshot {
	out := make([]domain.DealSnapshot, 0, len(ids))
	var misses []string
	for _, id := range ids {
		snap, err := s.Cache.GetSnapshot(ctx, id)
		if err == nil {
			out = append(out, *snap)
			continue
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.Log.Warn().Err(err).Str("deal_id", id).Msg("cache read failed")
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
		if cerr := s.Cache.PutSnapshot(ctx, snap); cerr != nil {
			s.Log.Warn().Err(cerr).Str("deal_id", snap.DealID).Msg("cache repopulate failed")
		}
	}
	return out
}
