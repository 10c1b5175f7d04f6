// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Claim model.
//
// Error semantics mirror the deal repository: ErrNotFound for missing rows,
// ErrDuplicate for unique violations, and ErrStaleTransition for conditional
// status updates that matched no row.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
)

// ErrStaleTransition is returned by conditional claim updates when the row
// exists but is no longer in the expected status. Callers map it to a
// conflict, never to not-found.
var ErrStaleTransition = errors.New("stale transition")

// CreateClaim inserts a new claim. The unique (deal_id, consumer_id) index is
// the store-level guarantee behind one-claim-per-consumer-per-deal; a
// violation is surfaced as ErrDuplicate.
func CreateClaim(ctx context.Context, db *gorm.DB, c *domain.Claim) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetClaim fetches a claim by its identifier, or ErrNotFound. Lookup is by
// primary key only; there is no fallback scan.
func GetClaim(ctx context.Context, db *gorm.DB, id string) (*domain.Claim, error) {
	var c domain.Claim
	err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClaimByDealConsumer returns the consumer's claim on a deal, or
// ErrNotFound. Used for the has-claimed annotation and the fast-path
// duplicate check before a claim attempt.
func GetClaimByDealConsumer(ctx context.Context, db *gorm.DB, dealID, consumerID string) (*domain.Claim, error) {
	var c domain.Claim
	err := db.WithContext(ctx).
		Where("deal_id = ? AND consumer_id = ?", dealID, consumerID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConsumerClaims returns a page of a consumer's claims, most recent first.
func ListConsumerClaims(ctx context.Context, db *gorm.DB, consumerID string, offset, limit int) ([]domain.Claim, error) {
	var out []domain.Claim
	err := db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("claimed_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountConsumerClaims returns the total number of claims made by consumerID.
func CountConsumerClaims(ctx context.Context, db *gorm.DB, consumerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("consumer_id = ?", consumerID).
		Count(&total).Error
	return total, err
}

// MarkClaimRedeemed flips a claim from claimed to redeemed, recording the
// redemption instant. The transition is conditional on the current status, so
// a second redemption attempt matches no row and returns ErrStaleTransition.
// The claim's existence must be checked separately to distinguish not-found.
func MarkClaimRedeemed(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("id = ? AND status = ?", id, domain.ClaimStatusClaimed).
		Updates(map[string]interface{}{
			"status":      domain.ClaimStatusRedeemed,
			"redeemed_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// CancelClaim flips a claim from claimed to cancelled. Same conditional
// semantics as MarkClaimRedeemed.
func CancelClaim(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("id = ? AND status = ?", id, domain.ClaimStatusClaimed).
		Updates(map[string]interface{}{
			"status":     domain.ClaimStatusCancelled,
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// CountBusinessRedemptions counts redeemed claims across all of a business's
// deals (the dashboard redemption counter fallback).
func CountBusinessRedemptions(ctx context.Context, db *gorm.DB, businessID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("business_id = ? AND status = ?", businessID, domain.ClaimStatusRedeemed).
		Count(&total).Error
	return total, err
}
