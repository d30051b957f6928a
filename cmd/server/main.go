package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carecall/internal/config"
	"carecall/internal/dispatch"
	"carecall/internal/handlers"
	"carecall/internal/notify"
	"carecall/internal/security"
	"carecall/internal/service"
	"carecall/internal/session"
	"carecall/internal/store"
	"carecall/internal/telephony"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Open the state backend (file, sqlite, mysql or postgres)
	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("Failed to open state backend: %v", err)
	}
	st := store.New(backend)

	log.Printf("State backend ready (type: %s)", cfg.StoreBackend)

	// Sessions live in memory and expire after the configured TTL
	sessions := session.NewRegistry(cfg.SessionTTL)

	// Voice service client, disabled when no base URL is configured
	voice := telephony.NewClient(cfg.VoiceBaseURL, cfg.VoiceAPIKey, cfg.VoiceAPISecret, cfg.Debug)

	// Background dispatcher for voice calls and email alerts
	dispatcher := dispatch.New(cfg.DispatchQueueSize, cfg.DispatchCallTimeout, func(res dispatch.Result) {
		if res.Err != nil {
			log.Printf("Background task %s failed after %s: %v", res.Name, res.Duration, res.Err)
		}
	})

	// Low supply email alerts via SES
	emails, err := notify.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AlertEmail, cfg.Debug)
	if err != nil {
		log.Printf("Warning: email alerts disabled: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(st, sessions)
	familyService := service.NewFamilyService(st, voice, dispatcher, emails)

	// Rate limit the credential endpoints
	limiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	handler := handlers.NewRouter(authService, familyService, limiter)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}

	// Let queued calls and alerts finish before closing the backend
	dispatcher.Close()

	if closer, ok := backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("State backend close: %v", err)
		}
	}

	log.Println("Server stopped")
}

// openBackend picks the state backend from configuration.
func openBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case "", "file":
		return store.NewFileBackend(cfg.StatePath), nil
	case "sqlite", "sqlite3":
		return store.NewSQLBackend(cfg.StoreBackend, store.DialectConfig{Path: cfg.StatePath})
	case "mysql", "postgres", "postgresql":
		return store.NewSQLBackend(cfg.StoreBackend, store.DialectConfig{URL: cfg.DatabaseURL})
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}
