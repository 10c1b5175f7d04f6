// Profile HTTP handlers.
//
// This file exposes REST endpoints for the caller's own data:
//   - GET /me/profile   (consumer profile)
//   - PUT /me/profile   (update, creates on first write)
//   - GET /me/saves     (saved deals, paginated)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/services"
)

//
// DTOs
//

// UpdateProfileRequest is the JSON payload for editing the consumer profile.
type UpdateProfileRequest struct {
	// DisplayName is the public name shown on activity (1–100 chars).
	DisplayName string `json:"display_name" binding:"max=100" example:"Maria K"`
	// City is the consumer's home city.
	City string `json:"city" binding:"max=100" example:"Athens"`
}

// ListSavesResponse wraps a page of the caller's saved deals.
type ListSavesResponse struct {
	Saves      []domain.SavedDeal `json:"saves"`
	Pagination Pagination         `json:"pagination"`
}

//
// Handlers
//

// GetProfile godoc
// @ID          getProfile
// @Summary     Get own profile
// @Description Returns the caller's consumer profile.
// @Tags        Profile
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  domain.ConsumerProfile
// @Failure     404  {object}  handlers.ErrorResponse  "Profile not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /me/profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.profileSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		switch err {
		case services.ErrProfileNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update own profile
// @Description Sets the caller-editable profile fields, creating the profile on first write.
// @Tags        Profile
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.UpdateProfileRequest  true  "Profile payload"
//
// @Success     200  {object}  domain.ConsumerProfile
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /me/profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" && strings.TrimSpace(req.City) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "display_name or city required")
		return
	}

	p, err := h.profileSvc.Update(c.Request.Context(), userID(c), req.DisplayName, req.City)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// ListMySaves godoc
// @ID          listMySaves
// @Summary     List own saved deals (paginated)
// @Description Returns a page of the caller's saved deals, newest first.
// @Tags        Profile
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"             minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"          minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListSavesResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /me/saves [get]
func (h *Handlers) ListMySaves(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.profileSvc.ListSaves(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListSavesResponse{
		Saves:      items,
		Pagination: paginationOf(page, pageSize, total),
	})
}
