package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/neardeal/go-deals-backend/internal/cache"
	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/services"
	"github.com/neardeal/go-deals-backend/internal/signer"
)

// ---------- test DB + real service wiring ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:deal_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&domain.Deal{}, &domain.Claim{}, &domain.ConsumerProfile{}, &domain.BusinessProfile{},
		&domain.SavedDeal{}, &domain.Notification{}, &domain.DealSummary{}, &domain.Idempotency{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newHandlerCache(t *testing.T) *cache.GeoCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.New(rdb, time.Hour)
}

// realServices wires the concrete service stack over sqlite + miniredis,
// mirroring what router.go assembles in production.
func realServices(t *testing.T) (*services.DealService, *services.ClaimService, *services.NearbyService, *services.ProfileService) {
	t.Helper()
	db := newHandlerDB(t)
	gc := newHandlerCache(t)
	sg := signer.New(signer.EnvSecret("handler-test-secret"), "qr")

	dealSvc := &services.DealService{
		DB:     db,
		Cache:  gc,
		Signer: sg,
		Plans:  &services.PlanEnforcer{DB: db, Log: zerolog.Nop()},
		Log:    zerolog.Nop(),
	}
	claimSvc := &services.ClaimService{DB: db, Cache: gc, Signer: sg, Log: zerolog.Nop()}
	nearbySvc := &services.NearbyService{DB: db, Cache: gc, Log: zerolog.Nop(), DefaultRadiusKm: 5, MaxLimit: 50}
	profileSvc := &services.ProfileService{DB: db, Log: zerolog.Nop()}
	return dealSvc, claimSvc, nearbySvc, profileSvc
}

func validDealBody(city string) string {
	return fmt.Sprintf(`{
		"title": "Half-price lunch",
		"category": "food",
		"original_price": 20,
		"discounted_price": 10,
		"max_claims": 5,
		"latitude": 37.9838,
		"longitude": 23.7275,
		"district": "Center",
		"city": %q,
		"expires_at": %q
	}`, city, time.Now().UTC().Add(24*time.Hour).Format(time.RFC3339))
}

// ---------- flexible stubs (error-branch tests) ----------

type stubDealSvc struct {
	create       func(context.Context, string, services.CreateDealInput) (*domain.DealSnapshot, error)
	get          func(context.Context, string, string) (*services.DealView, error)
	cancel       func(context.Context, string, string) error
	listBusiness func(context.Context, string, int, int) ([]domain.Deal, int64, error)
	listFlash    func(context.Context, string, int) ([]domain.DealSnapshot, error)
	cityStats    func(context.Context, string) (*services.CityStatsView, error)
}

func (s stubDealSvc) Create(ctx context.Context, b string, in services.CreateDealInput) (*domain.DealSnapshot, error) {
	if s.create != nil {
		return s.create(ctx, b, in)
	}
	return &domain.DealSnapshot{DealID: "d", BusinessID: b, Title: in.Title}, nil
}

func (s stubDealSvc) Get(ctx context.Context, id, viewer string) (*services.DealView, error) {
	if s.get != nil {
		return s.get(ctx, id, viewer)
	}
	return &services.DealView{}, nil
}

func (s stubDealSvc) Cancel(ctx context.Context, b, id string) error {
	if s.cancel != nil {
		return s.cancel(ctx, b, id)
	}
	return nil
}

func (s stubDealSvc) ListBusiness(ctx context.Context, b string, p, ps int) ([]domain.Deal, int64, error) {
	if s.listBusiness != nil {
		return s.listBusiness(ctx, b, p, ps)
	}
	return nil, 0, nil
}

func (s stubDealSvc) ListFlash(ctx context.Context, city string, limit int) ([]domain.DealSnapshot, error) {
	if s.listFlash != nil {
		return s.listFlash(ctx, city, limit)
	}
	return nil, nil
}

func (s stubDealSvc) CityStats(ctx context.Context, city string) (*services.CityStatsView, error) {
	if s.cityStats != nil {
		return s.cityStats(ctx, city)
	}
	return &services.CityStatsView{City: city}, nil
}

type stubClaimSvc struct {
	create   func(context.Context, string, string) (*domain.Claim, error)
	redeem   func(context.Context, string, string, string) (*domain.Claim, error)
	listPage func(context.Context, string, int, int) ([]domain.Claim, int64, error)
}

func (s stubClaimSvc) Create(ctx context.Context, consumer, deal string) (*domain.Claim, error) {
	if s.create != nil {
		return s.create(ctx, consumer, deal)
	}
	return &domain.Claim{ID: "cl", DealID: deal, ConsumerID: consumer}, nil
}

func (s stubClaimSvc) Redeem(ctx context.Context, biz, claim, code string) (*domain.Claim, error) {
	if s.redeem != nil {
		return s.redeem(ctx, biz, claim, code)
	}
	return &domain.Claim{ID: claim, Status: domain.ClaimStatusRedeemed}, nil
}

func (s stubClaimSvc) ListPage(ctx context.Context, consumer string, p, ps int) ([]domain.Claim, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, consumer, p, ps)
	}
	return nil, 0, nil
}

type stubNearbySvc struct {
	query func(context.Context, services.NearbyQuery) ([]services.NearbyDeal, error)
}

func (s stubNearbySvc) Query(ctx context.Context, q services.NearbyQuery) ([]services.NearbyDeal, error) {
	if s.query != nil {
		return s.query(ctx, q)
	}
	return nil, nil
}

type stubProfileSvc struct {
	get        func(context.Context, string) (*domain.ConsumerProfile, error)
	update     func(context.Context, string, string, string) (*domain.ConsumerProfile, error)
	toggleSave func(context.Context, string, string) (bool, error)
	listSaves  func(context.Context, string, int, int) ([]domain.SavedDeal, int64, error)
}

func (s stubProfileSvc) Get(ctx context.Context, id string) (*domain.ConsumerProfile, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.ConsumerProfile{ID: id}, nil
}

func (s stubProfileSvc) Update(ctx context.Context, id, name, city string) (*domain.ConsumerProfile, error) {
	if s.update != nil {
		return s.update(ctx, id, name, city)
	}
	return &domain.ConsumerProfile{ID: id, DisplayName: name, City: city}, nil
}

func (s stubProfileSvc) ToggleSave(ctx context.Context, id, deal string) (bool, error) {
	if s.toggleSave != nil {
		return s.toggleSave(ctx, id, deal)
	}
	return true, nil
}

func (s stubProfileSvc) ListSaves(ctx context.Context, id string, p, ps int) ([]domain.SavedDeal, int64, error) {
	if s.listSaves != nil {
		return s.listSaves(ctx, id, p, ps)
	}
	return nil, 0, nil
}
