// Package cache implements the Redis-backed geo cache: TTL-bounded deal
// snapshots, a per-city spatial index, flash-deal markers, and city activity
// counters.
//
// The cache is advisory. Every reader must tolerate ErrMiss and fall back to
// the store; writers treat invalidation failures as log-and-continue since
// entries self-expire. Snapshots are stored as the external view only, so a
// cache hit can never leak signing material.
//
// Key layout:
//
//	deal:<dealId>            JSON snapshot, EX cache TTL
//	geo:deals:<city>         GEO set of deal ids
//	flash:<city>:<dealId>    flash marker, EX remaining flash window
//	stats:deals:<city>       active-deal counter
//	stats:claims:<city>      claim counter
//	stats:redemptions:<city> redemption counter
//	biz:<businessId>:redemptions
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/unicode/norm"

	"github.com/neardeal/go-deals-backend/internal/domain"
)

// ErrMiss is returned by read operations when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Candidate is one spatial-index hit: a deal id with its distance from the
// query point.
type Candidate struct {
	DealID     string
	DistanceKm float64
}

// CityCounters is the point-in-time counter snapshot for a city.
type CityCounters struct {
	Deals       int64
	Claims      int64
	Redemptions int64
}

// GeoCache wraps a Redis client with the deal cache key conventions.
// Safe for concurrent use.
type GeoCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// New builds a GeoCache. ttl bounds snapshot staleness; zero falls back to
// one hour.
func New(rdb redis.UniversalClient, ttl time.Duration) *GeoCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GeoCache{rdb: rdb, ttl: ttl}
}

// NormalizeCity canonicalizes a city name for key construction: Unicode NFC,
// lowercase, spaces collapsed to hyphens. "São Paulo" and "são  paulo" land
// on the same key.
func NormalizeCity(city string) string {
	c := norm.NFC.String(strings.TrimSpace(city))
	c = strings.ToLower(c)
	return strings.Join(strings.Fields(c), "-")
}

func snapshotKey(dealID string) string { return "deal:" + dealID }

func geoKey(city string) string { return "geo:deals:" + NormalizeCity(city) }

func flashKey(city, dealID string) string {
	return "flash:" + NormalizeCity(city) + ":" + dealID
}

func counterKey(kind, city string) string {
	return "stats:" + kind + ":" + NormalizeCity(city)
}

// PutSnapshot stores the external view of a deal under its snapshot key with
// the cache TTL.
func (g *GeoCache) PutSnapshot(ctx context.Context, snap domain.DealSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return g.rdb.Set(ctx, snapshotKey(snap.DealID), raw, g.ttl).Err()
}

// GetSnapshot returns the cached view of a deal, or ErrMiss.
func (g *GeoCache) GetSnapshot(ctx context.Context, dealID string) (*domain.DealSnapshot, error) {
	raw, err := g.rdb.Get(ctx, snapshotKey(dealID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var snap domain.DealSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt entry behaves like a miss; the store is authoritative.
		return nil, ErrMiss
	}
	return &snap, nil
}

// Invalidate drops the snapshot for a deal. Best effort by contract.
func (g *GeoCache) Invalidate(ctx context.Context, dealID string) error {
	return g.rdb.Del(ctx, snapshotKey(dealID)).Err()
}

// IndexLocation adds the deal to the city's spatial index.
func (g *GeoCache) IndexLocation(ctx context.Context, city, dealID string, lat, lng float64) error {
	return g.rdb.GeoAdd(ctx, geoKey(city), &redis.GeoLocation{
		Name:      dealID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// RemoveFromIndex drops the deal from the city's spatial index.
func (g *GeoCache) RemoveFromIndex(ctx context.Context, city, dealID string) error {
	return g.rdb.ZRem(ctx, geoKey(city), dealID).Err()
}

// QueryRadius returns up to limit candidates within radiusKm of the point,
// ordered by distance ascending. An empty city index yields an empty slice,
// not an error.
func (g *GeoCache) QueryRadius(ctx context.Context, city string, lat, lng, radiusKm float64, limit int) ([]Candidate, error) {
	locs, err := g.rdb.GeoRadius(ctx, geoKey(city), lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Count:    limit,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(locs))
	for _, l := range locs {
		out = append(out, Candidate{DealID: l.Name, DistanceKm: l.Dist})
	}
	return out, nil
}

// MarkFlash records a flash marker for the deal that lives exactly as long as
// the remaining flash window. Non-positive windows are ignored.
func (g *GeoCache) MarkFlash(ctx context.Context, city, dealID string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	return g.rdb.Set(ctx, flashKey(city, dealID), dealID, remaining).Err()
}

// UnmarkFlash removes the flash marker.
func (g *GeoCache) UnmarkFlash(ctx context.Context, city, dealID string) error {
	return g.rdb.Del(ctx, flashKey(city, dealID)).Err()
}

// ListFlash scans the city's live flash markers and returns the deal ids.
// Expired markers disappear on their own via TTL.
func (g *GeoCache) ListFlash(ctx context.Context, city string) ([]string, error) {
	pattern := "flash:" + NormalizeCity(city) + ":*"
	prefix := "flash:" + NormalizeCity(city) + ":"

	var ids []string
	var cursor uint64
	for {
		keys, next, err := g.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			ids = append(ids, strings.TrimPrefix(k, prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}

// IncrCityCounter bumps one of the per-city activity counters
// (deals, claims, redemptions) by delta, which may be negative.
func (g *GeoCache) IncrCityCounter(ctx context.Context, kind, city string, delta int64) error {
	return g.rdb.IncrBy(ctx, counterKey(kind, city), delta).Err()
}

// CityStats reads the counter snapshot for a city. Absent counters read as
// zero with ok=false so callers can fall back to the store.
func (g *GeoCache) CityStats(ctx context.Context, city string) (CityCounters, bool, error) {
	keys := []string{
		counterKey("deals", city),
		counterKey("claims", city),
		counterKey("redemptions", city),
	}
	vals, err := g.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return CityCounters{}, false, err
	}

	var c CityCounters
	ok := false
	parse := func(v interface{}, dst *int64) {
		s, isStr := v.(string)
		if !isStr {
			return
		}
		var n int64
		if _, err := fmt.Sscan(s, &n); err == nil {
			*dst = n
			ok = true
		}
	}
	parse(vals[0], &c.Deals)
	parse(vals[1], &c.Claims)
	parse(vals[2], &c.Redemptions)
	return c, ok, nil
}

// IncrBusinessRedemptions bumps the business-level redemption counter.
func (g *GeoCache) IncrBusinessRedemptions(ctx context.Context, businessID string) error {
	return g.rdb.Incr(ctx, "biz:"+businessID+":redemptions").Err()
}

// BusinessRedemptions reads the business redemption counter; absent reads as
// zero with ok=false.
func (g *GeoCache) BusinessRedemptions(ctx context.Context, businessID string) (int64, bool, error) {
	val, err := g.rdb.Get(ctx, "biz:"+businessID+":redemptions").Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}
