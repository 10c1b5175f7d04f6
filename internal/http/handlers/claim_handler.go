// Claim HTTP handlers.
//
// This file exposes REST endpoints for the claim lifecycle:
//   - POST /claims             (claim a deal, idempotency-aware)
//   - POST /claims/:id/redeem  (redeem a claim at the business)
//   - GET  /me/claims          (list own claims, paginated)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// claim exists for (user, deal, key), the handler returns that recorded claim
// and sets `Idempotency-Replayed: true`.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/neardeal/go-deals-backend/internal/repo"
	"github.com/neardeal/go-deals-backend/internal/services"
)

//
// DTOs
//

// CreateClaimRequest is the JSON payload for claiming a deal.
type CreateClaimRequest struct {
	// DealID identifies the deal to claim.
	DealID string `json:"deal_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// CreateClaimResponse confirms a claim and carries its redemption credential.
type CreateClaimResponse struct {
	ClaimID        string    `json:"claim_id"`
	DealID         string    `json:"deal_id"`
	RedemptionCode string    `json:"redemption_code"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// RedeemClaimRequest is the JSON payload for redeeming a claim.
type RedeemClaimRequest struct {
	// RedemptionCode is the `claimId:token` credential issued at claim time.
	RedemptionCode string `json:"redemption_code" binding:"required"`
}

// RedeemClaimResponse confirms a redemption.
type RedeemClaimResponse struct {
	ClaimID    string     `json:"claim_id"`
	Status     string     `json:"status"`
	RedeemedAt *time.Time `json:"redeemed_at"`
}

// ListClaimsResponse wraps a page of the caller's claims.
type ListClaimsResponse struct {
	Claims     []ClaimItem `json:"claims"`
	Pagination Pagination  `json:"pagination"`
}

// ClaimItem is the external projection of a claim. The redemption code is
// included because the listing is scoped to the claim's owner.
type ClaimItem struct {
	ClaimID         string     `json:"claim_id"`
	DealID          string     `json:"deal_id"`
	DealTitle       string     `json:"deal_title"`
	OriginalPrice   float64    `json:"original_price"`
	DiscountedPrice float64    `json:"discounted_price"`
	Status          string     `json:"status"`
	RedemptionCode  string     `json:"redemption_code"`
	ClaimedAt       time.Time  `json:"claimed_at"`
	RedeemedAt      *time.Time `json:"redeemed_at,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
}

//
// Handlers
//

// CreateClaim godoc
// @ID          createClaim
// @Summary     Claim a deal
// @Description Reserves one unit of the deal for the caller and returns the redemption credential.
// @Description Supports idempotency via the Idempotency-Key header (same key → same claim).
// @Tags        Claims
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       body             body    handlers.CreateClaimRequest  true  "Claim payload"
//
// @Success     201  {object}  handlers.CreateClaimResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request, deal not active, or cap reached"
// @Failure     404  {object}  handlers.ErrorResponse  "Deal not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already claimed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /claims [post]
func (h *Handlers) CreateClaim(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "deal_id required")
		return
	}
	dealID := strings.TrimSpace(req.DealID)
	if _, err := uuid.Parse(dealID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "deal id must be a UUID")
		return
	}

	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := claimIdempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.claimSvc.(*services.ClaimService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentUser, dealID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetClaim(ctx, svc.DB, rec.ClaimID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, CreateClaimResponse{
						ClaimID:        prev.ID,
						DealID:         prev.DealID,
						RedemptionCode: prev.RedemptionCode,
						ExpiresAt:      prev.ExpiresAt,
					})
					return
				}
			}
		}
	}

	cl, err := h.claimSvc.Create(ctx, currentUser, dealID)
	if err != nil {
		switch err {
		case services.ErrDealNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "deal not found")
		case services.ErrDealNotActive:
			fail(c, http.StatusBadRequest, ErrCodeDealNotActive, "deal is not active")
		case services.ErrMaxClaimsReached:
			fail(c, http.StatusBadRequest, ErrCodeMaxClaims, "deal is fully claimed")
		case services.ErrAlreadyClaimed:
			fail(c, http.StatusConflict, ErrCodeConflict, "deal already claimed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.claimSvc.(*services.ClaimService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentUser, dealID, idemKey, cl.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, CreateClaimResponse{
		ClaimID:        cl.ID,
		DealID:         cl.DealID,
		RedemptionCode: cl.RedemptionCode,
		ExpiresAt:      cl.ExpiresAt,
	})
}

// RedeemClaim godoc
// @ID          redeemClaim
// @Summary     Redeem a claim
// @Description Verifies the redemption credential and marks the claim redeemed. The caller must be the business that owns the deal.
// @Tags        Claims
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Business ID (demo header)"  example(biz123)
// @Param       id         path    string  true  "Claim ID (UUID)"            format(uuid)
// @Param       body       body    handlers.RedeemClaimRequest  true  "Redemption payload"
//
// @Success     200  {object}  handlers.RedeemClaimResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad credential"
// @Failure     403  {object}  handlers.ErrorResponse  "Wrong business"
// @Failure     404  {object}  handlers.ErrorResponse  "Claim not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already redeemed or not redeemable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /claims/{id}/redeem [post]
func (h *Handlers) RedeemClaim(c *gin.Context) {
	claimID := c.Param("id")
	if _, err := uuid.Parse(claimID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "claim id must be a UUID")
		return
	}

	var req RedeemClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "redemption_code required")
		return
	}

	cl, err := h.claimSvc.Redeem(c.Request.Context(), userID(c), claimID, strings.TrimSpace(req.RedemptionCode))
	if err != nil {
		switch err {
		case services.ErrBadRedemptionCode:
			fail(c, http.StatusBadRequest, ErrCodeBadCredential, "invalid redemption code")
		case services.ErrClaimNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "claim not found")
		case services.ErrWrongBusiness:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "claim belongs to another business")
		case services.ErrRedemptionConflict:
			fail(c, http.StatusConflict, ErrCodeConflict, "claim already redeemed")
		case services.ErrClaimNotRedeemable:
			fail(c, http.StatusConflict, ErrCodeNotRedeemable, "claim is not redeemable")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, RedeemClaimResponse{
		ClaimID:    cl.ID,
		Status:     cl.Status,
		RedeemedAt: cl.RedeemedAt,
	})
}

// ListMyClaims godoc
// @ID          listMyClaims
// @Summary     List own claims (paginated)
// @Description Returns a page of the caller's claims, newest first.
// @Tags        Claims
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"             minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"          minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListClaimsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /me/claims [get]
func (h *Handlers) ListMyClaims(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.claimSvc.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	out := make([]ClaimItem, 0, len(items))
	for i := range items {
		cl := &items[i]
		out = append(out, ClaimItem{
			ClaimID:         cl.ID,
			DealID:          cl.DealID,
			DealTitle:       cl.DealTitle,
			OriginalPrice:   cl.OriginalPrice,
			DiscountedPrice: cl.DiscountedPrice,
			Status:          cl.Status,
			RedemptionCode:  cl.RedemptionCode,
			ClaimedAt:       cl.ClaimedAt,
			RedeemedAt:      cl.RedeemedAt,
			ExpiresAt:       cl.ExpiresAt,
		})
	}
	ok(c, http.StatusOK, ListClaimsResponse{
		Claims:     out,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// claimIdempotencyKey extracts an idempotency key if an upstream middleware
// has already validated/stashed it. The fallback behavior reads the
// "Idempotency-Key" header directly when no dedicated middleware exists.
func claimIdempotencyKey(c *gin.Context) (string, bool) {
	if v := strings.TrimSpace(c.GetHeader("Idempotency-Key")); v != "" {
		return v, true
	}
	return "", false
}
