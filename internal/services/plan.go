// Package services – subscription plans
//
// Plan tiers gate how many deals a business can publish. Enforcement is
// fail-open by policy: if the check itself errors, the creation proceeds and
// the error is logged, trading quota accuracy for availability.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/repo"
)

// Plan tier names as stored on BusinessProfile.PlanTier.
const (
	TierFree       = "free"
	TierStarter    = "starter"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

// PlanLimits describes what a tier allows. A zero max means unlimited.
type PlanLimits struct {
	MaxDealsPerMonth  int
	MaxActiveDeals    int
	FlashDealsAllowed bool
}

// planTable maps tier names to limits. Unknown tiers fall back to free.
var planTable = map[string]PlanLimits{
	TierFree:       {MaxDealsPerMonth: 5, MaxActiveDeals: 2, FlashDealsAllowed: false},
	TierStarter:    {MaxDealsPerMonth: 20, MaxActiveDeals: 10, FlashDealsAllowed: false},
	TierPro:        {MaxDealsPerMonth: 100, MaxActiveDeals: 50, FlashDealsAllowed: true},
	TierEnterprise: {FlashDealsAllowed: true},
}

// LimitsForTier returns the limits for a tier name, defaulting to free.
func LimitsForTier(tier string) PlanLimits {
	if l, ok := planTable[tier]; ok {
		return l
	}
	return planTable[TierFree]
}

// PlanEnforcer checks deal-creation quotas against a business's tier.
type PlanEnforcer struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// AllowDealCreation decides whether the business may publish another deal
// now. ErrPlanLimit or ErrFlashNotAllowed reject the creation; infrastructure
// errors are logged and the creation is allowed.
func (p *PlanEnforcer) AllowDealCreation(ctx context.Context, businessID string, isFlash bool, now time.Time) error {
	prof, err := repo.EnsureBusinessProfile(ctx, p.DB, businessID)
	if err != nil {
		p.Log.Warn().Err(err).Str("business_id", businessID).Msg("plan lookup failed, allowing creation")
		return nil
	}
	limits := LimitsForTier(prof.PlanTier)

	if isFlash && !limits.FlashDealsAllowed {
		return ErrFlashNotAllowed
	}

	if limits.MaxActiveDeals > 0 {
		active, err := repo.CountActiveBusinessDeals(ctx, p.DB, businessID)
		if err != nil {
			p.Log.Warn().Err(err).Str("business_id", businessID).Msg("active-deal count failed, allowing creation")
			return nil
		}
		if active >= int64(limits.MaxActiveDeals) {
			return ErrPlanLimit
		}
	}

	if limits.MaxDealsPerMonth > 0 {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		created, err := repo.CountBusinessDealsSince(ctx, p.DB, businessID, monthStart)
		if err != nil {
			p.Log.Warn().Err(err).Str("business_id", businessID).Msg("monthly count failed, allowing creation")
			return nil
		}
		if created >= int64(limits.MaxDealsPerMonth) {
			return ErrPlanLimit
		}
	}

	return nil
}
