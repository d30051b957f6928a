// Package config loads application settings from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// State persistence. StoreBackend selects "file", "sqlite", "mysql"
	// or "postgres". StatePath feeds the file and sqlite backends,
	// DatabaseURL the server databases.
	StoreBackend string
	StatePath    string
	DatabaseURL  string

	SessionTTL time.Duration

	// Voice service used for reminder and purchase calls. Calls are
	// disabled when VoiceBaseURL is empty.
	VoiceBaseURL   string
	VoiceAPIKey    string
	VoiceAPISecret string

	// Low supply email alerts via SES. Disabled when AlertEmail or
	// SESFromEmail is empty.
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AlertEmail   string

	// Auth endpoint rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Background call dispatch.
	DispatchQueueSize   int
	DispatchCallTimeout time.Duration

	Debug bool
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env file: %v", err)
	}

	return &Config{
		ServerPort:          getEnv("PORT", "8080"),
		StoreBackend:        getEnv("STORE_BACKEND", "file"),
		StatePath:           getEnv("STATE_PATH", "./carecall.json"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SessionTTL:          getDuration("SESSION_TTL", 24*time.Hour),
		VoiceBaseURL:        getEnv("VOICE_BASE_URL", ""),
		VoiceAPIKey:         getEnv("VOICE_API_KEY", ""),
		VoiceAPISecret:      getEnv("VOICE_API_SECRET", ""),
		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		SESFromName:         getEnv("SES_FROM_NAME", "CareCall"),
		AlertEmail:          getEnv("ALERT_EMAIL", ""),
		RateLimitRequests:   getInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:     getDuration("RATE_LIMIT_WINDOW", time.Minute),
		DispatchQueueSize:   getInt("DISPATCH_QUEUE_SIZE", 32),
		DispatchCallTimeout: getDuration("DISPATCH_CALL_TIMEOUT", 30*time.Second),
		Debug:               getBool("DEBUG", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}
