// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
)

// BusinessDealsStats returns aggregate metadata for a business's deals: the
// total number of rows and the maximum UpdatedAt timestamp among those rows.
//
// It executes two lightweight queries against the deals table scoped to the
// provided businessID. When the business has no deals, the returned count is 0
// and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total deals for businessID
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func BusinessDealsStats(ctx context.Context, db *gorm.DB, businessID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Deal{}).Where("business_id = ?", businessID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// CityStats aggregates marketplace activity in a city straight from the store.
// It backs the stats endpoint when the cache counters are cold and doubles as
// the reconciliation source of truth.
func CityStats(ctx context.Context, db *gorm.DB, city string, now time.Time) (activeDeals, totalClaims, totalRedemptions int64, err error) {
	if err = db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("city = ? AND status = ? AND expires_at > ?", city, domain.DealStatusActive, now).
		Count(&activeDeals).Error; err != nil {
		return 0, 0, 0, err
	}

	if err = db.WithContext(ctx).
		Model(&domain.Claim{}).
		Joins("JOIN deals ON deals.id = claims.deal_id").
		Where("deals.city = ?", city).
		Count(&totalClaims).Error; err != nil {
		return 0, 0, 0, err
	}
	if err = db.WithContext(ctx).
		Model(&domain.Claim{}).
		Joins("JOIN deals ON deals.id = claims.deal_id").
		Where("deals.city = ? AND claims.status = ?", city, domain.ClaimStatusRedeemed).
		Count(&totalRedemptions).Error; err != nil {
		return 0, 0, 0, err
	}
	return activeDeals, totalClaims, totalRedemptions, nil
}
