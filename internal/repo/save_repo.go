// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for saved deals
// (consumer bookmarks).
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
)

// ToggleSave flips the bookmark state for (consumerID, dealID). Returns true
// when the deal is now saved, false when the toggle removed an existing save.
func ToggleSave(ctx context.Context, db *gorm.DB, consumerID, dealID, dealTitle string) (bool, error) {
	var existing domain.SavedDeal
	err := db.WithContext(ctx).
		Where("consumer_id = ? AND deal_id = ?", consumerID, dealID).
		First(&existing).Error
	if err == nil {
		if derr := db.WithContext(ctx).Delete(&existing).Error; derr != nil {
			return true, derr
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	rec := &domain.SavedDeal{
		ID:         uuid.NewString(),
		ConsumerID: consumerID,
		DealID:     dealID,
		DealTitle:  dealTitle,
		SavedAt:    time.Now().UTC(),
	}
	if cerr := db.WithContext(ctx).Create(rec).Error; cerr != nil {
		if isUniqueViolation(cerr) {
			// Concurrent save already landed; report saved.
			return true, nil
		}
		return false, cerr
	}
	return true, nil
}

// ListConsumerSaves returns a page of the consumer's bookmarks, newest first.
func ListConsumerSaves(ctx context.Context, db *gorm.DB, consumerID string, offset, limit int) ([]domain.SavedDeal, error) {
	var out []domain.SavedDeal
	err := db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("saved_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountConsumerSaves returns the total number of bookmarks for consumerID.
func CountConsumerSaves(ctx context.Context, db *gorm.DB, consumerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.SavedDeal{}).
		Where("consumer_id = ?", consumerID).
		Count(&total).Error
	return total, err
}

// HasSaved reports whether the consumer has bookmarked the deal.
func HasSaved(ctx context.Context, db *gorm.DB, consumerID, dealID string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.SavedDeal{}).
		Where("consumer_id = ? AND deal_id = ?", consumerID, dealID).
		Count(&total).Error
	return total > 0, err
}

// CreateNotification records a business notification (deal expiry and similar
// lifecycle messages).
func CreateNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(n).Error
}
