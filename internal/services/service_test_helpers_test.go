package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	sqlite "github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/neardeal/go-deals-backend/internal/cache"
	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/signer"
)

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Deal{}, &domain.Claim{}, &domain.ConsumerProfile{},
		&domain.BusinessProfile{}, &domain.SavedDeal{}, &domain.Notification{},
		&domain.DealSummary{}, &domain.Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newSvcCache(t *testing.T) (*cache.GeoCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.New(rdb, time.Hour), mr
}

func newSvcSigner() *signer.Signer {
	return signer.New(signer.EnvSecret("test-secret"), "qr")
}

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, ev domain.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingEmitter) byType(eventType string) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func validCreateInput(city string) CreateDealInput {
	return CreateDealInput{
		Title:           "Half-price lunch",
		Description:     "Any main dish",
		Category:        "Food",
		OriginalPrice:   20,
		DiscountedPrice: 10,
		MaxClaims:       5,
		Latitude:        37.9838,
		Longitude:       23.7275,
		District:        "Center",
		City:            city,
		ExpiresAt:       time.Now().UTC().Add(24 * time.Hour),
	}
}

func newDealService(t *testing.T) (*DealService, *recordingEmitter, *miniredis.Miniredis) {
	t.Helper()
	db := newSvcDB(t)
	gc, mr := newSvcCache(t)
	em := &recordingEmitter{}
	svc := &DealService{
		DB:      db,
		Cache:   gc,
		Signer:  newSvcSigner(),
		Emitter: em,
		Plans:   &PlanEnforcer{DB: db, Log: zerolog.Nop()},
		Log:     zerolog.Nop(),
	}
	return svc, em, mr
}

func newClaimService(t *testing.T, db *gorm.DB, gc DealCache) (*ClaimService, *recordingEmitter) {
	t.Helper()
	em := &recordingEmitter{}
	return &ClaimService{
		DB:      db,
		Cache:   gc,
		Signer:  newSvcSigner(),
		Emitter: em,
		Log:     zerolog.Nop(),
	}, em
}
