package main

import (
	"context"                  // Shutdown deadline and Redis ping
	"errors"                   // Server close detection
	"net/http"                 // HTTP server
	"os"                       // Signal channel
	"os/signal"                // Interrupt handling
	"spanner/internal/api"     // HTTP handlers and router
	"spanner/internal/config"  // Configuration
	"spanner/internal/db"      // Database connection
	"spanner/internal/gateway" // Payment gateway client
	"spanner/internal/ledger"  // Ledger store
	"spanner/internal/notify"  // Notifications
	"spanner/internal/wallet"  // Wallet service
	"syscall"                  // SIGTERM
	"time"                     // Timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

const kafkaConnectAttempts = 5

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Redis only backs read caches, the service runs without it
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.WithError(err).Warn("Redis unreachable, caching disabled")
			_ = redisClient.Close()
			redisClient = nil
		}
	}

	store := ledger.NewStore(gdb)
	gw := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)

	notifier := notify.New(gdb, store, nil)
	notifier.Async = true
	var publisher *notify.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, kafkaConnectAttempts)
		if err != nil {
			logrus.WithError(err).Warn("Kafka unavailable, notifications are stored only")
		} else {
			notifier.Publisher = publisher
		}
	}

	svc := wallet.NewService(store, gw, wallet.NewVerifier(gw, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret), notifier)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(api.Dependencies{
		DB:            gdb,
		Redis:         redisClient,
		Ledger:        store,
		Wallet:        svc,
		Notifier:      notifier,
		Gateway:       gw,
		JWTSecret:     cfg.JWTSecret,
		RazorpayKeyID: cfg.RazorpayKeyID,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.Infof("Server running on %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
	notifier.Wait() // Flush in-flight notifications
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logrus.WithError(err).Warn("Closing Kafka producer failed")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
