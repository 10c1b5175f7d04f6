// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for consumer and
// business profiles.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
)

// GetConsumerProfile fetches a consumer profile, or ErrNotFound.
func GetConsumerProfile(ctx context.Context, db *gorm.DB, id string) (*domain.ConsumerProfile, error) {
	var p domain.ConsumerProfile
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateConsumerProfile applies the caller-editable fields. Counters are not
// writable through this path.
func UpdateConsumerProfile(ctx context.Context, db *gorm.DB, id, displayName, city string) error {
	res := db.WithContext(ctx).
		Model(&domain.ConsumerProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"display_name": displayName,
			"city":         city,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BumpConsumerClaims increments total_claims, creating the profile row on
// first use. Best effort by contract: callers log failures and move on.
func BumpConsumerClaims(ctx context.Context, db *gorm.DB, consumerID string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.ConsumerProfile{}).
		Where("id = ?", consumerID).
		UpdateColumns(map[string]interface{}{
			"total_claims": gorm.Expr("total_claims + 1"),
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	err := db.WithContext(ctx).Create(&domain.ConsumerProfile{
		ID:          consumerID,
		TotalClaims: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error
	if err != nil && isUniqueViolation(err) {
		// Lost a create race; retry the increment once.
		return db.WithContext(ctx).
			Model(&domain.ConsumerProfile{}).
			Where("id = ?", consumerID).
			UpdateColumns(map[string]interface{}{
				"total_claims": gorm.Expr("total_claims + 1"),
				"updated_at":   now,
			}).Error
	}
	return err
}

// BumpRedemptionStreak updates the consumer's redemption streak. A redemption
// within 48h of the previous one extends the streak, otherwise it resets to 1.
func BumpRedemptionStreak(ctx context.Context, db *gorm.DB, consumerID string, at time.Time) error {
	var p domain.ConsumerProfile
	err := db.WithContext(ctx).Where("id = ?", consumerID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = domain.ConsumerProfile{
			ID:               consumerID,
			StreakCount:      1,
			LastRedemptionAt: &at,
			CreatedAt:        at,
			UpdatedAt:        at,
		}
		return db.WithContext(ctx).Create(&p).Error
	}
	if err != nil {
		return err
	}

	streak := 1
	if p.LastRedemptionAt != nil && at.Sub(*p.LastRedemptionAt) <= 48*time.Hour {
		streak = p.StreakCount + 1
	}
	return db.WithContext(ctx).
		Model(&domain.ConsumerProfile{}).
		Where("id = ?", consumerID).
		Updates(map[string]interface{}{
			"streak_count":       streak,
			"last_redemption_at": at,
			"updated_at":         at,
		}).Error
}

// GetBusinessProfile fetches a business profile, or ErrNotFound.
func GetBusinessProfile(ctx context.Context, db *gorm.DB, id string) (*domain.BusinessProfile, error) {
	var p domain.BusinessProfile
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureBusinessProfile returns the business profile, creating a default
// free-tier row when none exists yet.
func EnsureBusinessProfile(ctx context.Context, db *gorm.DB, id string) (*domain.BusinessProfile, error) {
	p, err := GetBusinessProfile(ctx, db, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	fresh := &domain.BusinessProfile{
		ID:        id,
		PlanTier:  "free",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cerr := db.WithContext(ctx).Create(fresh).Error; cerr != nil {
		if isUniqueViolation(cerr) {
			return GetBusinessProfile(ctx, db, id)
		}
		return nil, cerr
	}
	return fresh, nil
}
