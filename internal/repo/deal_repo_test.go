package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/neardeal/go-deals-backend/internal/domain"
)

func TestCreateDeal_SuccessAndDuplicate(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	now := time.Now().UTC()

	d := &domain.Deal{
		ID: "d1", BusinessID: "b1", Title: "t", Description: "x", Category: "food",
		OriginalPrice: 10, DiscountedPrice: 5, MaxClaims: 3,
		Status: domain.DealStatusActive, City: "athens", District: "center",
		ExpiresAt: now.Add(time.Hour), QRSignature: "sig",
	}
	if err := CreateDeal(context.Background(), db, d); err != nil {
		t.Fatalf("CreateDeal: %v", err)
	}
	if d.CreatedAt.IsZero() || d.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not stamped: %+v", d)
	}

	again := *d
	if err := CreateDeal(context.Background(), db, &again); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetDeal_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	_, err := GetDeal(context.Background(), db, "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestGetDealsByIDs(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	now := time.Now().UTC()
	seedDeal(t, db, "d1", "b1", "athens", domain.DealStatusActive, now.Add(time.Hour), now)
	seedDeal(t, db, "d2", "b1", "athens", domain.DealStatusActive, now.Add(time.Hour), now)

	got, err := GetDealsByIDs(context.Background(), db, []string{"d1", "d2", "ghost"})
	if err != nil {
		t.Fatalf("GetDealsByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deals, got %d", len(got))
	}

	empty, err := GetDealsByIDs(context.Background(), db, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result for nil ids, got (%v, %v)", empty, err)
	}
}

func TestIncrementClaimCount_GuardStopsAtCap(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	now := time.Now().UTC()
	d := seedDeal(t, db, "d1", "b1", "athens", domain.DealStatusActive, now.Add(time.Hour), now)
	d.MaxClaims = 2
	if err := db.Model(d).UpdateColumn("max_claims", 2).Error; err != nil {
		t.Fatalf("set cap: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := IncrementClaimCount(context.Background(), db, "d1"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	if err := IncrementClaimCount(context.Background(), db, "d1"); !errors.Is(err, ErrClaimCapReached) {
		t.Fatalf("expected ErrClaimCapReached at cap, got %v", err)
	}

	got, err := GetDeal(context.Background(), db, "d1")
	if err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.ClaimCount != 2 {
		t.Fatalf("counter overshot: %d", got.ClaimCount)
	}
}

func TestIncrementClaimCount_MissingDeal(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	err := IncrementClaimCount(context.Background(), db, "ghost")
	if !errors.Is(err, ErrClaimCapReached) {
		t.Fatalf("missing row should surface as guard failure, got %v", err)
	}
}

func TestTransitionDealStatus(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	now := time.Now().UTC()
	seedDeal(t, db, "d1", "b1", "athens", domain.DealStatusActive, now.Add(time.Hour), now)

	if err := TransitionDealStatus(context.Background(), db, "d1", domain.DealStatusActive, domain.DealStatusCancelled); err != nil {
		t.Fatalf("transition: %v", err)
	}
	got, _ := GetDeal(context.Background(), db, "d1")
	if got.Status != domain.DealStatusCancelled {
		t.Fatalf("status not updated: %q", got.Status)
	}

	// Repeating the same transition matches no row.
	err := TransitionDealStatus(context.Background(), db, "d1", domain.DealStatusActive, domain.DealStatusCancelled)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on stale transition, got %v", err)
	}
}

func TestListBusinessDeals_OrderAndPaging(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedDeal(t, db, "d1", "b1", "athens", domain.DealStatusActive, exp, t1)
	seedDeal(t, db, "d2", "b1", "athens", domain.DealStatusActive, exp, t2)
	seedDeal(t, db, "d3", "b1", "athens", domain.DealStatusActive, exp, t3)
	seedDeal(t, db, "dx", "b2", "athens", domain.DealStatusActive, exp, t3)

	page, err := ListBusinessDeals(context.Background(), db, "b1", 0, 2)
	if err != nil {
		t.Fatalf("ListBusinessDeals: %v", err)
	}
	if len(page) != 2 || page[0].ID != "d3" || page[1].ID != "d2" {
		t.Fatalf("unexpected order/page: %+v", page)
	}

	total, err := CountBusinessDeals(context.Background(), db, "b1")
	if err != nil || total != 3 {
		t.Fatalf("expected count 3, got (%d, %v)", total, err)
	}
}

func TestCountBusinessDeals_PlanWindows(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	seedDeal(t, db, "d1", "b1", "athens", domain.DealStatusActive, exp, old)
	seedDeal(t, db, "d2", "b1", "athens", domain.DealStatusActive, exp, recent)
	seedDeal(t, db, "d3", "b1", "athens", domain.DealStatusCancelled, exp, recent)

	since := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	n, err := CountBusinessDealsSince(context.Background(), db, "b1", since)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 recent deals, got (%d, %v)", n, err)
	}

	active, err := CountActiveBusinessDeals(context.Background(), db, "b1")
	if err != nil || active != 2 {
		t.Fatalf("expected 2 active deals, got (%d, %v)", active, err)
	}
}

func TestListActiveFlashDeals(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	mk := func(id string, flash bool, expires time.Time, city string) {
		d := seedDeal(t, db, id, "b1", city, domain.DealStatusActive, expires, now)
		if flash {
			if err := db.Model(d).UpdateColumn("is_flash", true).Error; err != nil {
				t.Fatalf("set flash: %v", err)
			}
		}
	}
	mk("f1", true, now.Add(2*time.Hour), "athens")
	mk("f2", true, now.Add(time.Hour), "athens")
	mk("f3", true, now.Add(-time.Minute), "athens") // lapsed
	mk("f4", true, now.Add(time.Hour), "patras")    // wrong city
	mk("n1", false, now.Add(time.Hour), "athens")   // not flash

	got, err := ListActiveFlashDeals(context.Background(), db, "athens", now, 10)
	if err != nil {
		t.Fatalf("ListActiveFlashDeals: %v", err)
	}
	if len(got) != 2 || got[0].ID != "f2" || got[1].ID != "f1" {
		t.Fatalf("unexpected flash listing: %+v", got)
	}
}

func TestListExpiredActiveDeals(t *testing.T) {
	db := newTestDB(t, &domain.Deal{})
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	seedDeal(t, db, "d1", "b1", "athens", domain.DealStatusActive, now.Add(-2*time.Hour), now)
	seedDeal(t, db, "d2", "b1", "athens", domain.DealStatusActive, now.Add(-time.Hour), now)
	seedDeal(t, db, "d3", "b1", "athens", domain.DealStatusActive, now.Add(time.Hour), now)
	seedDeal(t, db, "d4", "b1", "athens", domain.DealStatusExpired, now.Add(-time.Hour), now)

	got, err := ListExpiredActiveDeals(context.Background(), db, now, 10)
	if err != nil {
		t.Fatalf("ListExpiredActiveDeals: %v", err)
	}
	if len(got) != 2 || got[0].ID != "d1" || got[1].ID != "d2" {
		t.Fatalf("unexpected sweep batch: %+v", got)
	}
}

func TestUpsertDealSummary_InsertThenOverwrite(t *testing.T) {
	db := newTestDB(t, &domain.DealSummary{})
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	s := &domain.DealSummary{DealID: "d1", BusinessID: "b1", Status: domain.DealStatusExpired, FinalClaimCount: 3, ExpiredAt: at}
	if err := UpsertDealSummary(context.Background(), db, s); err != nil {
		t.Fatalf("insert: %v", err)
	}

	s2 := &domain.DealSummary{DealID: "d1", BusinessID: "b1", Status: domain.DealStatusExpired, FinalClaimCount: 5, ExpiredAt: at.Add(time.Minute)}
	if err := UpsertDealSummary(context.Background(), db, s2); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var got domain.DealSummary
	if err := db.First(&got, "deal_id = ?", "d1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.FinalClaimCount != 5 {
		t.Fatalf("last write should win, got %+v", got)
	}

	var n int64
	db.Model(&domain.DealSummary{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected a single summary row, got %d", n)
	}
}
