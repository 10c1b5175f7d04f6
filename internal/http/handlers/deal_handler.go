// Deal HTTP handlers.
//
// This file exposes REST endpoints for deal resources:
//   - POST   /deals             (create, plan-enforced)
//   - GET    /deals/:id         (cached read with viewer annotations)
//   - DELETE /deals/:id         (cancel own deal)
//   - GET    /deals/nearby      (geo query)
//   - GET    /deals/flash       (flash listing per city)
//   - POST   /deals/:id/save    (toggle bookmark)
//   - GET    /business/deals    (own deals, paginated, ETag support)
//   - GET    /stats/cities/:city
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/repo"
	"github.com/neardeal/go-deals-backend/internal/services"
	"github.com/neardeal/go-deals-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// DealService defines deal lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type DealService interface {
	// Create validates and publishes a new deal for the business.
	Create(ctx context.Context, businessID string, in services.CreateDealInput) (*domain.DealSnapshot, error)
	// Get returns the external deal view annotated for the viewer.
	Get(ctx context.Context, dealID, viewerID string) (*services.DealView, error)
	// Cancel transitions an active deal to cancelled on behalf of its owner.
	Cancel(ctx context.Context, businessID, dealID string) error
	// ListBusiness returns a page of the business's deals and the total count.
	ListBusiness(ctx context.Context, businessID string, page, pageSize int) ([]domain.Deal, int64, error)
	// ListFlash returns the city's live flash deals, soonest-ending first.
	ListFlash(ctx context.Context, city string, limit int) ([]domain.DealSnapshot, error)
	// CityStats reports per-city activity counters.
	CityStats(ctx context.Context, city string) (*services.CityStatsView, error)
}

// ClaimService defines claim creation and redemption operations.
type ClaimService interface {
	// Create reserves one unit of the deal for the consumer.
	Create(ctx context.Context, consumerID, dealID string) (*domain.Claim, error)
	// Redeem validates the credential and marks the claim redeemed.
	Redeem(ctx context.Context, businessID, claimID, redemptionCode string) (*domain.Claim, error)
	// ListPage returns a page of the consumer's claims and the total count.
	ListPage(ctx context.Context, consumerID string, page, pageSize int) ([]domain.Claim, int64, error)
}

// NearbyService defines the spatial deal query.
type NearbyService interface {
	// Query returns live deals around a point, ascending by distance.
	Query(ctx context.Context, q services.NearbyQuery) ([]services.NearbyDeal, error)
}

// ProfileService defines consumer profile and bookmark operations.
type ProfileService interface {
	// Get returns the consumer profile.
	Get(ctx context.Context, consumerID string) (*domain.ConsumerProfile, error)
	// Update sets the caller-editable profile fields.
	Update(ctx context.Context, consumerID, displayName, city string) (*domain.ConsumerProfile, error)
	// ToggleSave flips the bookmark state for a deal.
	ToggleSave(ctx context.Context, consumerID, dealID string) (bool, error)
	// ListSaves returns a page of the consumer's bookmarks and the total count.
	ListSaves(ctx context.Context, consumerID string, page, pageSize int) ([]domain.SavedDeal, int64, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for deals, claims, profiles, and stats.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	dealSvc    DealService
	claimSvc   ClaimService
	nearbySvc  NearbyService
	profileSvc ProfileService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(dealSvc DealService, claimSvc ClaimService, nearbySvc NearbyService, profileSvc ProfileService) *Handlers {
	return &Handlers{dealSvc: dealSvc, claimSvc: claimSvc, nearbySvc: nearbySvc, profileSvc: profileSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// CreateDealRequest is the JSON payload for publishing a deal.
type CreateDealRequest struct {
	// Title is the customer-facing deal name (1–255 chars).
	Title string `json:"title" binding:"required,min=1,max=255" example:"2-for-1 souvlaki"`
	// Description optionally elaborates on the offer.
	Description string `json:"description" example:"Any two classic souvlaki for the price of one"`
	// Category groups deals for filtering (normalized to lowercase).
	Category string `json:"category" binding:"required" example:"food"`
	// OriginalPrice is the regular price; must exceed DiscountedPrice.
	OriginalPrice float64 `json:"original_price" binding:"required" example:"8.50"`
	// DiscountedPrice is the deal price.
	DiscountedPrice float64 `json:"discounted_price" example:"4.25"`
	// MaxClaims caps how many consumers can claim the deal.
	MaxClaims int     `json:"max_claims" binding:"required,min=1" example:"50"`
	Latitude  float64 `json:"latitude" example:"37.9838"`
	Longitude float64 `json:"longitude" example:"23.7275"`
	District  string  `json:"district" example:"Koukaki"`
	City      string  `json:"city" binding:"required" example:"Athens"`
	ImageURL  string  `json:"image_url" example:"https://cdn.example.com/souvlaki.jpg"`
	// IsFlash marks a short-window deal; requires FlashExpiresAt and a plan
	// tier that allows flash deals.
	IsFlash        bool       `json:"is_flash"`
	FlashExpiresAt *time.Time `json:"flash_expires_at,omitempty"`
	// ExpiresAt is when the deal stops being claimable (must be in the future).
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

// CreateDealResponse confirms a published deal.
type CreateDealResponse struct {
	DealID      string `json:"deal_id"`
	QRSignature string `json:"qr_signature"`
}

// SaveToggleResponse reports the bookmark state after a toggle.
type SaveToggleResponse struct {
	Saved bool `json:"saved"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListDealsResponse wraps a page of a business's deals.
type ListDealsResponse struct {
	Deals      []domain.Deal `json:"deals"`
	Pagination Pagination    `json:"pagination"`
}

// NearbyResponse wraps a nearby query result.
type NearbyResponse struct {
	Deals []services.NearbyDeal `json:"deals"`
}

// FlashDealsResponse wraps a flash listing.
type FlashDealsResponse struct {
	Deals []domain.DealSnapshot `json:"deals"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// floatQuery parses a float query parameter, returning ok=false when the
// parameter is absent or malformed.
func floatQuery(c *gin.Context, name string) (float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// paginationOf computes the standard pagination envelope.
func paginationOf(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// CreateDeal godoc
// @ID          createDeal
// @Summary     Publish a new deal
// @Description Validates the payload, enforces the business's plan limits, and publishes the deal.
// @Tags        Deals
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Business ID (demo header)"  example(biz123)
// @Param       body       body    handlers.CreateDealRequest  true  "Deal payload"
//
// @Success     201  {object}  handlers.CreateDealResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Plan limit"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /deals [post]
func (h *Handlers) CreateDeal(c *gin.Context) {
	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	snap, err := h.dealSvc.Create(c.Request.Context(), userID(c), services.CreateDealInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		MaxClaims:       req.MaxClaims,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		District:        req.District,
		City:            req.City,
		ImageURL:        req.ImageURL,
		IsFlash:         req.IsFlash,
		FlashExpiresAt:  req.FlashExpiresAt,
		ExpiresAt:       req.ExpiresAt,
	})
	if err != nil {
		switch err {
		case services.ErrInvalidDeal:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid deal payload")
		case services.ErrInvalidPricing:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "discounted price must be below original price")
		case services.ErrPlanLimit:
			fail(c, http.StatusForbidden, ErrCodePlanLimit, "plan limit reached")
		case services.ErrFlashNotAllowed:
			fail(c, http.StatusForbidden, ErrCodeFlashNotAllowed, "plan does not allow flash deals")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	sig := ""
	if svc, okSvc := h.dealSvc.(*services.DealService); okSvc && svc.Signer != nil {
		if s, serr := svc.Signer.Sign(c.Request.Context(), snap.DealID, userID(c), "deal"); serr == nil {
			sig = s
		}
	}
	ok(c, http.StatusCreated, CreateDealResponse{DealID: snap.DealID, QRSignature: sig})
}

// GetDeal godoc
// @ID          getDeal
// @Summary     Get a deal
// @Description Returns the public view of a deal, annotated with the caller's save/claim state.
// @Tags        Deals
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Deal ID (UUID)"         format(uuid)
//
// @Success     200  {object}  services.DealView
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Deal not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /deals/{id} [get]
func (h *Handlers) GetDeal(c *gin.Context) {
	dealID := c.Param("id")
	if _, err := uuid.Parse(dealID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "deal id must be a UUID")
		return
	}

	view, err := h.dealSvc.Get(c.Request.Context(), dealID, userID(c))
	if err != nil {
		switch err {
		case services.ErrDealNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "deal not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, view)
}

// CancelDeal godoc
// @ID          cancelDeal
// @Summary     Cancel a deal
// @Description Transitions an active deal owned by the caller to cancelled.
// @Tags        Deals
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Business ID (demo header)"  example(biz123)
// @Param       id         path    string  true  "Deal ID (UUID)"             format(uuid)
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Deal not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Deal not active"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /deals/{id} [delete]
func (h *Handlers) CancelDeal(c *gin.Context) {
	dealID := c.Param("id")
	if _, err := uuid.Parse(dealID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "deal id must be a UUID")
		return
	}

	err := h.dealSvc.Cancel(c.Request.Context(), userID(c), dealID)
	if err != nil {
		switch err {
		case services.ErrDealNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "deal not found")
		case services.ErrWrongBusiness:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "deal belongs to another business")
		case services.ErrDealNotActive:
			fail(c, http.StatusConflict, ErrCodeDealNotActive, "deal is not active")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// NearbyDeals godoc
// @ID          nearbyDeals
// @Summary     Find deals near a location
// @Description Returns live deals within the radius, ascending by distance.
// @Tags        Deals
// @Produce     json
//
// @Param       city      query  string  true  "City name"       example(Athens)
// @Param       lat       query  number  true  "Latitude"        example(37.9838)
// @Param       lng       query  number  true  "Longitude"       example(23.7275)
// @Param       radius    query  number  false "Radius in km"    example(5)
// @Param       category  query  string  false "Category filter" example(food)
// @Param       limit     query  int     false "Max results"     minimum(1) default(20)
//
// @Success     200  {object}  handlers.NearbyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /deals/nearby [get]
func (h *Handlers) NearbyDeals(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	lat, okLat := floatQuery(c, "lat")
	lng, okLng := floatQuery(c, "lng")
	if city == "" || !okLat || !okLng {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "city, lat and lng are required")
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "coordinates out of range")
		return
	}

	radius, _ := floatQuery(c, "radius")
	limit := utils.AtoiDefault(c.Query("limit"), 0)

	deals, err := h.nearbySvc.Query(c.Request.Context(), services.NearbyQuery{
		City:     city,
		Lat:      lat,
		Lng:      lng,
		RadiusKm: radius,
		Category: c.Query("category"),
		Limit:    limit,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, NearbyResponse{Deals: deals})
}

// FlashDeals godoc
// @ID          flashDeals
// @Summary     List flash deals in a city
// @Description Returns live flash deals for the city, soonest-ending first.
// @Tags        Deals
// @Produce     json
//
// @Param       city   query  string  true  "City name"    example(Athens)
// @Param       limit  query  int     false "Max results"  minimum(1) default(20)
//
// @Success     200  {object}  handlers.FlashDealsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /deals/flash [get]
func (h *Handlers) FlashDeals(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "city is required")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0)

	deals, err := h.dealSvc.ListFlash(c.Request.Context(), city, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, FlashDealsResponse{Deals: deals})
}

// ToggleSaveDeal godoc
// @ID          toggleSaveDeal
// @Summary     Toggle a deal bookmark
// @Description Saves the deal for the caller, or removes the bookmark if it exists.
// @Tags        Deals
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Deal ID (UUID)"         format(uuid)
//
// @Success     200  {object}  handlers.SaveToggleResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Deal not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /deals/{id}/save [post]
func (h *Handlers) ToggleSaveDeal(c *gin.Context) {
	dealID := c.Param("id")
	if _, err := uuid.Parse(dealID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "deal id must be a UUID")
		return
	}

	saved, err := h.profileSvc.ToggleSave(c.Request.Context(), userID(c), dealID)
	if err != nil {
		switch err {
		case services.ErrDealNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "deal not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, SaveToggleResponse{Saved: saved})
}

// ListBusinessDeals godoc
// @ID          listBusinessDeals
// @Summary     List own deals (paginated)
// @Description Returns a page of the caller's deals. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Business
// @Produce     json
//
// @Param       X-User-ID      header  string  false "Business ID (demo header)"    example(biz123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"   example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                   minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"                minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListDealsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /business/deals [get]
func (h *Handlers) ListBusinessDeals(c *gin.Context) {
	ctx := c.Request.Context()
	businessID := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.dealSvc.(*services.DealService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.BusinessDealsStats(ctx, db, businessID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"deals:%s:%d:%d"`, businessID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.dealSvc.ListBusiness(ctx, businessID, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListDealsResponse{
		Deals:      items,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// CityStats godoc
// @ID          cityStats
// @Summary     City activity stats
// @Description Returns per-city deal, claim, and redemption counters.
// @Tags        Stats
// @Produce     json
//
// @Param       city  path  string  true  "City name"  example(Athens)
//
// @Success     200  {object}  services.CityStatsView
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stats/cities/{city} [get]
func (h *Handlers) CityStats(c *gin.Context) {
	stats, err := h.dealSvc.CityStats(c.Request.Context(), c.Param("city"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
