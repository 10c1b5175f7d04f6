// Command server runs the deals backend HTTP API.
//
// Startup order:
//  1. Load .env (best effort) and typed config from the environment
//  2. Configure zerolog (level, optional pretty console output)
//  3. Initialize OpenTelemetry tracing (no-op unless OTEL_ENABLED)
//  4. Open SQLite, migrate the schema, attach the GORM tracing plugin
//  5. Connect Redis for the geo cache
//  6. Start the event dispatcher and the expiry sweeper
//  7. Register routes and serve until SIGINT/SIGTERM, then drain
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/neardeal/go-deals-backend/internal/cache"
	"github.com/neardeal/go-deals-backend/internal/config"
	"github.com/neardeal/go-deals-backend/internal/domain"
	"github.com/neardeal/go-deals-backend/internal/events"
	httpapi "github.com/neardeal/go-deals-backend/internal/http"
	"github.com/neardeal/go-deals-backend/internal/observability"
	"github.com/neardeal/go-deals-backend/internal/repo"
	"github.com/neardeal/go-deals-backend/internal/services"
	"github.com/neardeal/go-deals-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title           Local Deals API
// @version         1.0
// @description     Hyperlocal deals backend: businesses publish time-boxed deals, consumers claim and redeem them via signed QR credentials.
// @BasePath        /api/v1
func main() {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting deals backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin")
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	{
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// The store remains the source of truth; the cache is optional.
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, serving from store only")
		}
		cancel()
	}
	defer func() { _ = rdb.Close() }()

	dispatcher := events.NewDispatcher(log.Logger, 4)
	defer dispatcher.Close()

	// Business notifications on claim/redemption activity.
	dispatcher.On(domain.EventDealClaimed, func(ctx context.Context, ev domain.Event) error {
		return repo.CreateNotification(ctx, db, &domain.Notification{
			BusinessID: ev.BusinessID,
			DealID:     ev.DealID,
			Type:       "deal_claimed",
			Title:      "Deal claimed",
			Body:       ev.DealTitle,
		})
	})
	dispatcher.On(domain.EventClaimRedeemed, func(ctx context.Context, ev domain.Event) error {
		return repo.CreateNotification(ctx, db, &domain.Notification{
			BusinessID: ev.BusinessID,
			DealID:     ev.DealID,
			Type:       "claim_redeemed",
			Title:      "Claim redeemed",
			Body:       ev.DealTitle,
		})
	})

	sweeper := &services.ExpirySweeper{
		DB:       db,
		Cache:    cache.New(rdb, cfg.CacheTTL),
		Emitter:  dispatcher,
		Log:      log.Logger,
		Interval: cfg.ExpirySweepInterval,
	}
	go sweeper.Run(ctx)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, rdb, dispatcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server failed")
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
