// Package domain defines the persistence models for deals, claims, profiles,
// saves, and notifications. These types are mapped with GORM and form the core
// data layer of the deals marketplace.
package domain

import (
	"time"
)

// Deal statuses. A deal accepts claims only while active; expired and
// cancelled are terminal.
const (
	DealStatusActive    = "active"
	DealStatusExpired   = "expired"
	DealStatusCancelled = "cancelled"
)

// Claim statuses. A claim starts as claimed and moves to exactly one of
// redeemed (business-verified) or cancelled.
const (
	ClaimStatusClaimed   = "claimed"
	ClaimStatusRedeemed  = "redeemed"
	ClaimStatusCancelled = "cancelled"
)

// Deal represents a time-bounded discount offer published by a business.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - BusinessID: identifier of the publishing business; indexed for the
//     business dashboard listing (newest first).
//   - OriginalPrice / DiscountedPrice: discounted must be strictly lower,
//     enforced at creation in the service layer.
//   - MaxClaims / ClaimCount: claim capacity and the monotonic counter.
//     ClaimCount is mutated only through the guarded atomic increment in the
//     repo layer and never exceeds MaxClaims.
//   - Status: active | expired | cancelled (enforced by DB constraint).
//   - ExpiresAt: hard expiry; indexed for active-deals-by-expiry queries and
//     the expiry sweep.
//   - IsFlash / FlashExpiresAt: optional shorter-lived flash window layered on
//     top of the normal expiry.
//   - QRSignature: internal signing material; never serialized to JSON and
//     stripped from every cache snapshot.
type Deal struct {
	ID              string     `json:"deal_id"          gorm:"type:char(36);primaryKey"`
	BusinessID      string     `json:"business_id"      gorm:"type:varchar(64);not null;index:idx_business_deals,priority:1"`
	Title           string     `json:"title"            gorm:"type:varchar(255);not null"`
	Description     string     `json:"description"      gorm:"type:text;not null"`
	Category        string     `json:"category"         gorm:"type:varchar(64);not null;index"`
	OriginalPrice   float64    `json:"original_price"   gorm:"not null"`
	DiscountedPrice float64    `json:"discounted_price" gorm:"not null"`
	MaxClaims       int        `json:"max_claims"       gorm:"not null"`
	ClaimCount      int        `json:"claim_count"      gorm:"not null;default:0"`
	Status          string     `json:"status"           gorm:"type:varchar(16);not null;default:'active';check:status IN ('active','expired','cancelled');index:idx_active_expiry,priority:1"`
	Latitude        float64    `json:"latitude"         gorm:"not null"`
	Longitude       float64    `json:"longitude"        gorm:"not null"`
	District        string     `json:"district"         gorm:"type:varchar(128);not null"`
	City            string     `json:"city"             gorm:"type:varchar(128);not null;index"`
	ImageURL        string     `json:"image_url,omitempty" gorm:"type:text"`
	IsFlash         bool       `json:"is_flash"         gorm:"not null;default:false"`
	FlashExpiresAt  *time.Time `json:"flash_expires_at,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"       gorm:"not null;index:idx_active_expiry,priority:2"`
	QRSignature     string     `json:"-"                gorm:"type:varchar(128);not null"`
	CreatedAt       time.Time  `json:"created_at"       gorm:"index:idx_business_deals,priority:2,sort:desc"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Deal.
func (Deal) TableName() string { return "deals" }

// DealSnapshot is the denormalized, externally safe view of a Deal. It is the
// exact payload stored in the geo cache and returned from read paths, so the
// internal-fields boundary is enforced by construction: signing material and
// index keys simply do not exist on this type.
type DealSnapshot struct {
	DealID          string     `json:"deal_id"`
	BusinessID      string     `json:"business_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	OriginalPrice   float64    `json:"original_price"`
	DiscountedPrice float64    `json:"discounted_price"`
	MaxClaims       int        `json:"max_claims"`
	ClaimCount      int        `json:"claim_count"`
	Status          string     `json:"status"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	District        string     `json:"district"`
	City            string     `json:"city"`
	ImageURL        string     `json:"image_url,omitempty"`
	IsFlash         bool       `json:"is_flash"`
	FlashExpiresAt  *time.Time `json:"flash_expires_at,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Snapshot builds the cache/API view of the deal, dropping internal fields.
func (d *Deal) Snapshot() DealSnapshot {
	return DealSnapshot{
		DealID:          d.ID,
		BusinessID:      d.BusinessID,
		Title:           d.Title,
		Description:     d.Description,
		Category:        d.Category,
		OriginalPrice:   d.OriginalPrice,
		DiscountedPrice: d.DiscountedPrice,
		MaxClaims:       d.MaxClaims,
		ClaimCount:      d.ClaimCount,
		Status:          d.Status,
		Latitude:        d.Latitude,
		Longitude:       d.Longitude,
		District:        d.District,
		City:            d.City,
		ImageURL:        d.ImageURL,
		IsFlash:         d.IsFlash,
		FlashExpiresAt:  d.FlashExpiresAt,
		ExpiresAt:       d.ExpiresAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// Claimable reports whether the deal can accept a new claim at the given time.
func (d *Deal) Claimable(now time.Time) bool {
	return d.Status == DealStatusActive &&
		d.ExpiresAt.After(now) &&
		d.ClaimCount < d.MaxClaims
}

// Claim represents a consumer's reservation of one unit of a Deal. The
// (deal_id, consumer_id) pair is unique, which is the store-level guarantee
// behind at-most-one-claim-per-user-per-deal; the application-level existence
// check is only a fast path.
//
// Price and title are snapshotted at claim time so the record stays accurate
// even if the deal changes later. RedemptionCode is the consumer's credential
// (claimId:token); it is returned to its owner only.
type Claim struct {
	ID              string     `json:"claim_id"         gorm:"type:char(36);primaryKey"`
	DealID          string     `json:"deal_id"          gorm:"type:char(36);not null;uniqueIndex:ux_claim_deal_consumer,priority:1"`
	ConsumerID      string     `json:"consumer_id"      gorm:"type:varchar(64);not null;uniqueIndex:ux_claim_deal_consumer,priority:2;index:idx_consumer_claims,priority:1"`
	BusinessID      string     `json:"business_id"      gorm:"type:varchar(64);not null;index"`
	DealTitle       string     `json:"deal_title"       gorm:"type:varchar(255);not null"`
	OriginalPrice   float64    `json:"original_price"   gorm:"not null"`
	DiscountedPrice float64    `json:"discounted_price" gorm:"not null"`
	RedemptionCode  string     `json:"redemption_code"  gorm:"type:varchar(160);not null"`
	Status          string     `json:"status"           gorm:"type:varchar(16);not null;default:'claimed';check:status IN ('claimed','redeemed','cancelled')"`
	ClaimedAt       time.Time  `json:"claimed_at"       gorm:"index:idx_consumer_claims,priority:2,sort:desc"`
	RedeemedAt      *time.Time `json:"redeemed_at,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`
}

// TableName returns the database table name for Claim.
func (Claim) TableName() string { return "claims" }

// ConsumerProfile aggregates a consumer's lifetime activity. TotalClaims and
// the redemption streak are best-effort counters bumped as side effects of
// claim/redeem operations; their updates never fail the primary operation.
type ConsumerProfile struct {
	ID               string     `json:"consumer_id"        gorm:"type:varchar(64);primaryKey"`
	DisplayName      string     `json:"display_name"       gorm:"type:varchar(128)"`
	City             string     `json:"city"               gorm:"type:varchar(128)"`
	TotalClaims      int        `json:"total_claims"       gorm:"not null;default:0"`
	StreakCount      int        `json:"streak_count"       gorm:"not null;default:0"`
	LastRedemptionAt *time.Time `json:"last_redemption_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ConsumerProfile.
func (ConsumerProfile) TableName() string { return "consumer_profiles" }

// BusinessProfile holds business identity and the subscription plan tier that
// drives deal-creation limits.
type BusinessProfile struct {
	ID        string    `json:"business_id" gorm:"type:varchar(64);primaryKey"`
	Name      string    `json:"name"        gorm:"type:varchar(255)"`
	City      string    `json:"city"        gorm:"type:varchar(128)"`
	PlanTier  string    `json:"plan_tier"   gorm:"type:varchar(32);not null;default:'free'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for BusinessProfile.
func (BusinessProfile) TableName() string { return "business_profiles" }

// SavedDeal is a consumer bookmark on a deal; at most one per (consumer, deal).
type SavedDeal struct {
	ID         string    `json:"-"          gorm:"type:char(36);primaryKey"`
	ConsumerID string    `json:"-"          gorm:"type:varchar(64);not null;uniqueIndex:ux_save_consumer_deal,priority:1;index:idx_consumer_saves,priority:1"`
	DealID     string    `json:"deal_id"    gorm:"type:char(36);not null;uniqueIndex:ux_save_consumer_deal,priority:2"`
	DealTitle  string    `json:"deal_title" gorm:"type:varchar(255);not null"`
	SavedAt    time.Time `json:"saved_at"   gorm:"index:idx_consumer_saves,priority:2,sort:desc"`
}

// TableName returns the database table name for SavedDeal.
func (SavedDeal) TableName() string { return "saved_deals" }

// Notification is a message delivered to a business (deal expiry, milestones).
type Notification struct {
	ID         string    `json:"notification_id" gorm:"type:char(36);primaryKey"`
	BusinessID string    `json:"business_id"     gorm:"type:varchar(64);not null;index:idx_business_notifs,priority:1"`
	DealID     string    `json:"deal_id"         gorm:"type:char(36)"`
	Type       string    `json:"type"            gorm:"type:varchar(64);not null"`
	Title      string    `json:"title"           gorm:"type:varchar(255);not null"`
	Body       string    `json:"body"            gorm:"type:text"`
	Read       bool      `json:"read"            gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"      gorm:"index:idx_business_notifs,priority:2,sort:desc"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }

// DealSummary is the final analytics snapshot written when a deal expires.
// One row per deal, last write wins (the expiry sweep is at-least-once).
type DealSummary struct {
	DealID          string    `json:"deal_id"           gorm:"type:char(36);primaryKey"`
	BusinessID      string    `json:"business_id"       gorm:"type:varchar(64);not null;index"`
	Status          string    `json:"status"            gorm:"type:varchar(16);not null"`
	FinalClaimCount int       `json:"final_claim_count" gorm:"not null"`
	ExpiredAt       time.Time `json:"expired_at"        gorm:"not null"`
}

// TableName returns the database table name for DealSummary.
func (DealSummary) TableName() string { return "deal_summaries" }
