package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/services"
)

// publishDeal drives the create endpoint and returns the new deal id.
func publishDeal(t *testing.T, r *gin.Engine, businessID string) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/deals", bytes.NewBufferString(validDealBody("Athens")))
	req.Header.Set("X-User-ID", businessID)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("publish -> %d body=%s", w.Code, w.Body.String())
	}
	var created CreateDealResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("json: %v", err)
	}
	return created.DealID
}

// ---------- CreateClaim ----------

func TestCreateClaim_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := New(stubDealSvc{}, stubClaimSvc{}, stubNearbySvc{}, stubProfileSvc{})
	r := gin.New()
	r.POST("/claims", h.CreateClaim)

	// missing body -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/claims", bytes.NewBufferString("{}"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty body -> %d", w.Code)
	}

	// non-UUID deal id -> 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/claims", bytes.NewBufferString(`{"deal_id":"nope"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid -> %d", w.Code)
	}
}

func TestCreateClaim_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"deal not found", services.ErrDealNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"not active", services.ErrDealNotActive, http.StatusBadRequest, ErrCodeDealNotActive},
		{"fully claimed", services.ErrMaxClaimsReached, http.StatusBadRequest, ErrCodeMaxClaims},
		{"already claimed", services.ErrAlreadyClaimed, http.StatusConflict, ErrCodeConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := stubClaimSvc{create: func(context.Context, string, string) (*domain.Claim, error) {
				return nil, tc.err
			}}
			h := New(stubDealSvc{}, svc, stubNearbySvc{}, stubProfileSvc{})
			r := gin.New()
			r.POST("/claims", h.CreateClaim)

			w := httptest.NewRecorder()
			body := fmt.Sprintf(`{"deal_id":%q}`, uuid.NewString())
			req := httptest.NewRequest(http.MethodPost, "/claims", bytes.NewBufferString(body))
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("%s -> %d", tc.name, w.Code)
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != tc.code {
				t.Fatalf("expected code %q, got %+v (%v)", tc.code, er, err)
			}
		})
	}
}

func TestCreateClaim_Success_And_IdempotentReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dealSvc, claimSvc, nearbySvc, profileSvc := realServices(t)
	h := New(dealSvc, claimSvc, nearbySvc, profileSvc)
	r := gin.New()
	r.POST("/deals", h.CreateDeal)
	r.POST("/claims", h.CreateClaim)

	dealID := publishDeal(t, r, "b1")

	claimOnce := func(key string) (*httptest.ResponseRecorder, CreateClaimResponse) {
		w := httptest.NewRecorder()
		body := fmt.Sprintf(`{"deal_id":%q}`, dealID)
		req := httptest.NewRequest(http.MethodPost, "/claims", bytes.NewBufferString(body))
		req.Header.Set("X-User-ID", "maria")
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		r.ServeHTTP(w, req)
		var out CreateClaimResponse
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return w, out
	}

	w, first := claimOnce("retry-key")
	if w.Code != http.StatusCreated {
		t.Fatalf("claim -> %d body=%s", w.Code, w.Body.String())
	}
	if first.ClaimID == "" || first.RedemptionCode == "" || first.DealID != dealID {
		t.Fatalf("claim response incomplete: %+v", first)
	}

	// same key -> recorded claim, marked as replayed
	w, second := claimOnce("retry-key")
	if w.Code != http.StatusCreated {
		t.Fatalf("replay -> %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("expected replay header")
	}
	if second.ClaimID != first.ClaimID || second.RedemptionCode != first.RedemptionCode {
		t.Fatalf("replay mismatch: %+v vs %+v", second, first)
	}

	// no key -> duplicate claim conflicts
	w, _ = claimOnce("")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate claim -> %d", w.Code)
	}
}

// ---------- RedeemClaim ----------

func TestRedeemClaim_Validation_And_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := New(stubDealSvc{}, stubClaimSvc{}, stubNearbySvc{}, stubProfileSvc{})
	r := gin.New()
	r.POST("/claims/:id/redeem", h.RedeemClaim)

	// malformed claim id -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/claims/nope/redeem", bytes.NewBufferString(`{"redemption_code":"x"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}

	// missing code -> 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/claims/"+uuid.NewString()+"/redeem", bytes.NewBufferString(`{}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing code -> %d", w.Code)
	}

	cases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"bad credential", services.ErrBadRedemptionCode, http.StatusBadRequest, ErrCodeBadCredential},
		{"not found", services.ErrClaimNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"wrong business", services.ErrWrongBusiness, http.StatusForbidden, ErrCodeForbidden},
		{"already redeemed", services.ErrRedemptionConflict, http.StatusConflict, ErrCodeConflict},
		{"not redeemable", services.ErrClaimNotRedeemable, http.StatusConflict, ErrCodeNotRedeemable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := stubClaimSvc{redeem: func(context.Context, string, string, string) (*domain.Claim, error) {
				return nil, tc.err
			}}
			hh := New(stubDealSvc{}, svc, stubNearbySvc{}, stubProfileSvc{})
			rr := gin.New()
			rr.POST("/claims/:id/redeem", hh.RedeemClaim)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/claims/"+uuid.NewString()+"/redeem",
				bytes.NewBufferString(`{"redemption_code":"cl:tok"}`))
			rr.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("%s -> %d", tc.name, w.Code)
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != tc.code {
				t.Fatalf("expected code %q, got %+v (%v)", tc.code, er, err)
			}
		})
	}
}

func TestRedeemClaim_FullFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dealSvc, claimSvc, nearbySvc, profileSvc := realServices(t)
	h := New(dealSvc, claimSvc, nearbySvc, profileSvc)
	r := gin.New()
	r.POST("/deals", h.CreateDeal)
	r.POST("/claims", h.CreateClaim)
	r.POST("/claims/:id/redeem", h.RedeemClaim)

	dealID := publishDeal(t, r, "b1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/claims",
		bytes.NewBufferString(fmt.Sprintf(`{"deal_id":%q}`, dealID)))
	req.Header.Set("X-User-ID", "maria")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("claim -> %d", w.Code)
	}
	var claim CreateClaimResponse
	if err := json.Unmarshal(w.Body.Bytes(), &claim); err != nil {
		t.Fatalf("json: %v", err)
	}

	// wrong business -> 403
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/claims/"+claim.ClaimID+"/redeem",
		bytes.NewBufferString(fmt.Sprintf(`{"redemption_code":%q}`, claim.RedemptionCode)))
	req.Header.Set("X-User-ID", "someone-else")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("wrong business redeem -> %d", w.Code)
	}

	// owner -> 200 redeemed
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/claims/"+claim.ClaimID+"/redeem",
		bytes.NewBufferString(fmt.Sprintf(`{"redemption_code":%q}`, claim.RedemptionCode)))
	req.Header.Set("X-User-ID", "b1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("redeem -> %d body=%s", w.Code, w.Body.String())
	}
	var out RedeemClaimResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Status != domain.ClaimStatusRedeemed || out.RedeemedAt == nil {
		t.Fatalf("unexpected redeem response: %+v", out)
	}

	// repeat -> 409
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/claims/"+claim.ClaimID+"/redeem",
		bytes.NewBufferString(fmt.Sprintf(`{"redemption_code":%q}`, claim.RedemptionCode)))
	req.Header.Set("X-User-ID", "b1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("double redeem -> %d", w.Code)
	}
}

// ---------- ListMyClaims ----------

func TestListMyClaims_ProjectsClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dealSvc, claimSvc, nearbySvc, profileSvc := realServices(t)
	h := New(dealSvc, claimSvc, nearbySvc, profileSvc)
	r := gin.New()
	r.POST("/deals", h.CreateDeal)
	r.POST("/claims", h.CreateClaim)
	r.GET("/me/claims", h.ListMyClaims)

	dealID := publishDeal(t, r, "b1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/claims",
		bytes.NewBufferString(fmt.Sprintf(`{"deal_id":%q}`, dealID)))
	req.Header.Set("X-User-ID", "maria")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("claim -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me/claims", nil)
	req.Header.Set("X-User-ID", "maria")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var out ListClaimsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Claims) != 1 || out.Pagination.Total != 1 {
		t.Fatalf("unexpected list: %+v", out)
	}
	item := out.Claims[0]
	if item.DealID != dealID || item.Status != domain.ClaimStatusClaimed || item.RedemptionCode == "" {
		t.Fatalf("unexpected item: %+v", item)
	}

	// another user sees nothing
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me/claims", nil)
	req.Header.Set("X-User-ID", "nikos")
	r.ServeHTTP(w, req)
	var empty ListClaimsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &empty); err != nil || len(empty.Claims) != 0 {
		t.Fatalf("expected empty list, got %+v (%v)", empty, err)
	}
}
