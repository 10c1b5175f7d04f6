// Package services defines the business logic for deals, claims, and
// profiles. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Deal-related errors.
var (
	// ErrDealNotFound indicates that the requested deal does not exist.
	ErrDealNotFound = errors.New("deal not found")

	// ErrDealNotActive is returned when the target deal is expired,
	// cancelled, or past its expiry instant.
	ErrDealNotActive = errors.New("deal is not active")

	// ErrMaxClaimsReached is returned when a deal's claim capacity is
	// exhausted.
	ErrMaxClaimsReached = errors.New("deal has reached its maximum claims")

	// ErrInvalidPricing is returned when the discounted price is not
	// strictly lower than the original price.
	ErrInvalidPricing = errors.New("discounted price must be lower than original price")

	// ErrInvalidDeal is returned for deal payloads missing required fields
	// or carrying out-of-range values.
	ErrInvalidDeal = errors.New("invalid deal")

	// ErrPlanLimit is returned when the business's subscription tier does
	// not allow the attempted deal creation.
	ErrPlanLimit = errors.New("plan limit reached")

	// ErrFlashNotAllowed is returned when the tier does not include flash
	// deals.
	ErrFlashNotAllowed = errors.New("plan does not allow flash deals")
)

// Claim-related errors.
var (
	// ErrClaimNotFound indicates that the requested claim does not exist.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrAlreadyClaimed is returned when the consumer already holds a claim
	// on the deal.
	ErrAlreadyClaimed = errors.New("deal already claimed")

	// ErrClaimNotRedeemable is returned when the claim is not in the
	// claimed state.
	ErrClaimNotRedeemable = errors.New("claim is not redeemable")

	// ErrRedemptionConflict is returned when a concurrent request won the
	// claimed to redeemed transition.
	ErrRedemptionConflict = errors.New("claim was already redeemed")

	// ErrBadRedemptionCode is returned for malformed or mismatching
	// redemption codes, including signature failures.
	ErrBadRedemptionCode = errors.New("invalid redemption code")

	// ErrWrongBusiness is returned when a business attempts to redeem a
	// claim on a deal it does not own.
	ErrWrongBusiness = errors.New("claim belongs to another business")
)

// Profile-related errors.
var (
	// ErrProfileNotFound indicates the consumer profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
)
