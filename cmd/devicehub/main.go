package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rtb-ict/devicehub/internal/config"
	"github.com/rtb-ict/devicehub/internal/database"
	"github.com/rtb-ict/devicehub/internal/flow"
	"github.com/rtb-ict/devicehub/internal/gateway"
	"github.com/rtb-ict/devicehub/internal/logging"
	"github.com/rtb-ict/devicehub/internal/server"
	"github.com/rtb-ict/devicehub/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	sealKey, err := cfg.SealKeyBytes()
	if err != nil {
		log.Fatalf("failed to read seal key: %v", err)
	}
	var sealer *session.Sealer
	if sealKey != nil {
		sealer, err = session.NewSealer(sealKey)
		if err != nil {
			log.Fatalf("failed to build sealer: %v", err)
		}
	}

	var store session.Store
	switch cfg.SessionBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("failed to reach redis: %v", err)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, sealer)
	default:
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		store = session.NewSQLiteStore(db, sealer)
	}

	gw := gateway.New(gateway.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout})
	flows := flow.NewManager(gw, store, flow.Config{
		SessionTTL: cfg.SessionTTL,
		PendingTTL: cfg.PendingTTL,
	}, logger.With("component", "flow"))

	srv := server.New(gw, store, flows, server.Config{
		SessionTTL: cfg.SessionTTL,
		WSOrigins:  cfg.WSOrigins,
	}, logger)

	// Background sweep of expired sessions and stale limiter buckets.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				n, err := store.DeleteExpired(sweepCtx)
				if err != nil {
					logger.Warn("session sweep", "error", err)
				} else if n > 0 {
					logger.Info("session sweep", "removed", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("devicehub listening", "addr", cfg.Addr, "backend", cfg.APIBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
