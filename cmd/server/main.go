// Command server runs the customer feedback backend: the public review
// submission endpoint, the authenticated dashboard API, and the CSV/PDF
// export surface, with Prometheus metrics and optional OpenTelemetry tracing.
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
	"gorm.io/gorm"

	"github.com/africanjoy/feedback-backend/internal/config"
	httpapi "github.com/africanjoy/feedback-backend/internal/http"
	"github.com/africanjoy/feedback-backend/internal/notify"
	"github.com/africanjoy/feedback-backend/internal/observability"
	"github.com/africanjoy/feedback-backend/internal/repo"
	"github.com/africanjoy/feedback-backend/internal/services"
	"github.com/africanjoy/feedback-backend/internal/store"
	"github.com/africanjoy/feedback-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local dev convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open feedback store")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate feedback store")
	}

	var cache *store.ViewCache
	if cfg.Cache.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		cache = store.NewViewCache(rdb, cfg.Cache.TTL)
		log.Info().Str("addr", cfg.Cache.Addr).Dur("ttl", cfg.Cache.TTL).Msg("dashboard view cache enabled")
	}
	st := store.New(db, cache)

	var celebrator notify.Celebrator = notify.Nop{}
	if cfg.Celebration.Enabled && len(cfg.Celebration.Brokers) > 0 {
		kc := notify.NewKafkaCelebrator(cfg.Celebration.Brokers, cfg.Celebration.Topic)
		defer func() {
			if err := kc.Close(); err != nil {
				log.Warn().Err(err).Msg("celebration publisher close")
			}
		}()
		celebrator = kc
		log.Info().Strs("brokers", cfg.Celebration.Brokers).Str("topic", cfg.Celebration.Topic).
			Msg("five-star celebrations enabled")
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		auth := &services.AuthService{DB: db, SessionTTL: cfg.SessionTTL}
		if err := auth.EnsureUser(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("seed dashboard login")
		}
	}

	go purgeLoop(ctx, db)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, st, celebrator, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("feedback backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// purgeLoop periodically deletes expired sessions and idempotency records so
// the SQLite file does not accumulate dead rows between restarts.
func purgeLoop(ctx context.Context, db *gorm.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UTC()
			if err := repo.DeleteExpiredSessions(ctx, db, now); err != nil {
				log.Warn().Err(err).Msg("purge expired sessions")
			}
			if err := repo.PurgeExpiredIdempotency(ctx, db, now); err != nil {
				log.Warn().Err(err).Msg("purge expired idempotency records")
			}
		}
	}
}
