package main

import (
	"context"   // Startup and shutdown deadlines
	"errors"    // Error inspection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"restaurant_system/internal/api"     // Custom package for API handlers
	"restaurant_system/internal/config"  // Custom package for configuration
	"restaurant_system/internal/db"      // Database connection and migration
	"restaurant_system/internal/payment" // PayPal checkout
	"restaurant_system/internal/session" // Login sessions
	"restaurant_system/internal/store"   // Credential and state stores
	"restaurant_system/internal/tracing" // OpenTelemetry setup
	"restaurant_system/internal/utils"   // Logger and cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

const stateCacheTTL = 60 * time.Second // Lifetime of the cached state document

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	utils.SetupLogger(cfg.LogLevel, cfg.LogFormat) // Setup logger

	ctx := context.Background()
	environment := "development"
	if cfg.IsProd {
		environment = "production"
	}
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.TraceSampleRatio,
		Environment: environment,
	})
	if err != nil {
		logrus.Fatalf("failed to init tracing: %v", err)
	}

	// Connect to the database and bring the schema up to date
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("%v", err)
	}

	creds := store.NewCredentialStore(gdb)
	if err := creds.Seed(ctx, store.SeedConfig{
		AdminUsername:    cfg.AdminUsername,
		AdminPassword:    cfg.AdminPassword,
		EmployeeUsername: cfg.EmployeeUsername,
		EmployeePassword: cfg.EmployeePassword,
	}); err != nil {
		logrus.Fatalf("failed to seed users: %v", err)
	}

	// Setup Redis client when configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		logrus.WithField("addr", cfg.RedisAddr).Info("Redis connected")
	}

	// State document, cached in Redis when available
	var states store.StateStore = store.NewGormStateStore(gdb)
	if redisClient != nil {
		states = store.NewCachedStateStore(states, utils.NewJSONCache(redisClient, "restaurant:state:", stateCacheTTL))
	}

	// Sessions
	var backend session.Backend = session.NewMemoryBackend()
	if cfg.SessionBackend == config.SessionBackendRedis {
		backend = session.NewRedisBackend(redisClient)
	}
	sessions := session.NewManager(backend, cfg.SessionTTL)
	logrus.WithFields(logrus.Fields{
		"backend": cfg.SessionBackend,
		"ttl":     cfg.SessionTTL.String(),
	}).Info("Session store ready")

	// Payments
	payCfg := payment.Config{
		ClientID:        cfg.PayPalClientID,
		ClientSecret:    cfg.PayPalClientSecret,
		APIBase:         cfg.PayPalAPIBase,
		Currency:        cfg.PayPalCurrency,
		BuyerCountry:    cfg.PayPalBuyerCountry,
		BillingCurrency: cfg.BillingCurrency,
		INRToUSDRate:    cfg.INRToUSDRate,
	}
	var provider payment.Provider
	if payCfg.Enabled() {
		provider = payment.NewPayPalProvider(payCfg, cfg.PayPalTimeout)
		if err := payCfg.CheckCurrencies(); err != nil {
			logrus.WithField("error", err.Error()).Warn("PayPal checkout will be refused")
		}
		logrus.WithFields(logrus.Fields{
			"sandbox":  payCfg.Sandbox(),
			"currency": payCfg.Currency,
		}).Info("PayPal enabled")
	} else {
		logrus.Warn("PayPal credentials not set, checkout disabled")
	}
	payments := payment.NewOrchestrator(payCfg, provider, states)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := api.Deps{
		DB:           gdb,
		Credentials:  creds,
		States:       states,
		Sessions:     sessions,
		Payments:     payments,
		Cookie:       api.CookieOptions{Secure: cfg.IsProd},
		StaticDir:    cfg.StaticDir,
		TrustedProxy: []string{"127.0.0.1"},
	}
	if redisClient != nil {
		deps.Redis = redisClient // Only a non-nil client, so readiness skips Redis otherwise
	}
	r, err := api.NewRouter(deps)
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           tracing.Handler(r), // Server span per request
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("addr", cfg.Addr()).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for a stop signal, then drain
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithField("error", err.Error()).Error("Server shutdown failed")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logrus.WithField("error", err.Error()).Warn("Tracing shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
