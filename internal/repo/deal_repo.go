// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Deal model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a deal is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - CreateDeal returns ErrDuplicate when the identifier already exists
//     (the create-if-absent idempotency guard).
//   - IncrementClaimCount returns ErrClaimCapReached when the guarded
//     increment matches no row because claim_count has hit max_claims.
//   - On other DB errors (connectivity, constraints), the raw error is
//     propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrClaimCapReached is returned by IncrementClaimCount when the deal exists
// but claim_count has already reached max_claims. The guard and the increment
// are a single UPDATE, so the counter can never pass the cap.
var ErrClaimCapReached = errors.New("claim cap reached")

// isUniqueViolation detects unique-constraint violations across drivers.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// CreateDeal inserts a new Deal row only if its identifier does not already
// exist. The caller supplies a fully populated record (including ID and
// signing material); CreatedAt/UpdatedAt are set here in UTC.
//
// Returns ErrDuplicate if a deal with the same ID exists.
func CreateDeal(ctx context.Context, db *gorm.DB, d *domain.Deal) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetDeal fetches a deal by ID, or ErrNotFound if missing.
func GetDeal(ctx context.Context, db *gorm.DB, id string) (*domain.Deal, error) {
	var d domain.Deal
	err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDealsByIDs batch-fetches deals by identifier. Missing IDs are simply
// absent from the result; the caller decides how to treat them.
func GetDealsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Deal, error) {
	if len(ids) == 0 {
		return []domain.Deal{}, nil
	}
	var out []domain.Deal
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// IncrementClaimCount atomically bumps claim_count by one, but only while the
// counter is still below max_claims. Guard and increment are one statement so
// concurrent claims cannot push the counter past the cap.
//
// Returns ErrClaimCapReached when no row matched the guard. The caller is
// expected to have verified the deal's existence beforehand (typically inside
// the same transaction).
func IncrementClaimCount(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ? AND claim_count < max_claims", id).
		UpdateColumns(map[string]interface{}{
			"claim_count": gorm.Expr("claim_count + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClaimCapReached
	}
	return nil
}

// TransitionDealStatus moves a deal from one status to another, conditioned on
// the current status. If no rows are affected (deal missing or not in `from`),
// it returns ErrNotFound. UpdatedAt is refreshed on success.
func TransitionDealStatus(ctx context.Context, db *gorm.DB, id, from, to string) error {
	res := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListBusinessDeals returns a page of a business's deals ordered by creation
// time descending (most recent first).
func ListBusinessDeals(ctx context.Context, db *gorm.DB, businessID string, offset, limit int) ([]domain.Deal, error) {
	var out []domain.Deal
	err := db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountBusinessDeals returns the total number of deals owned by businessID.
func CountBusinessDeals(ctx context.Context, db *gorm.DB, businessID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("business_id = ?", businessID).
		Count(&total).Error
	return total, err
}

// CountBusinessDealsSince counts deals created by businessID at or after the
// given instant (plan enforcement: deals-per-month).
func CountBusinessDealsSince(ctx context.Context, db *gorm.DB, businessID string, since time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("business_id = ? AND created_at >= ?", businessID, since).
		Count(&total).Error
	return total, err
}

// CountActiveBusinessDeals counts a business's currently active deals
// (plan enforcement: max concurrent active deals).
func CountActiveBusinessDeals(ctx context.Context, db *gorm.DB, businessID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("business_id = ? AND status = ?", businessID, domain.DealStatusActive).
		Count(&total).Error
	return total, err
}

// ListActiveFlashDeals returns active, unexpired flash deals in a city,
// ordered by expiry ascending (soonest first). Used as the store fallback for
// the cache-first flash listing.
func ListActiveFlashDeals(ctx context.Context, db *gorm.DB, city string, now time.Time, limit int) ([]domain.Deal, error) {
	var out []domain.Deal
	err := db.WithContext(ctx).
		Where("city = ? AND is_flash = ? AND status = ? AND expires_at > ?", city, true, domain.DealStatusActive, now).
		Order("expires_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListExpiredActiveDeals returns deals still marked active whose expiry has
// passed, ordered by expiry ascending. The expiry sweep consumes this in
// batches.
func ListExpiredActiveDeals(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Deal, error) {
	var out []domain.Deal
	err := db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", domain.DealStatusActive, now).
		Order("expires_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountActiveDealsInCity counts active, unexpired deals in a city (city stats
// fallback when Redis counters are cold).
func CountActiveDealsInCity(ctx context.Context, db *gorm.DB, city string, now time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("city = ? AND status = ? AND expires_at > ?", city, domain.DealStatusActive, now).
		Count(&total).Error
	return total, err
}

// UpsertDealSummary writes the final analytics snapshot for an expired deal.
// The sweep is at-least-once, so an existing row is overwritten.
func UpsertDealSummary(ctx context.Context, db *gorm.DB, s *domain.DealSummary) error {
	res := db.WithContext(ctx).
		Model(&domain.DealSummary{}).
		Where("deal_id = ?", s.DealID).
		Updates(map[string]interface{}{
			"status":            s.Status,
			"final_claim_count": s.FinalClaimCount,
			"expired_at":        s.ExpiredAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(s).Error
}
