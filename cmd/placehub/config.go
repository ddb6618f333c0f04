package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL      string
	Addr             string
	AllowedOrigins   []string
	LogLevel         string
	LogFormat        string
	JWTSecret        string
	TokenTTL         time.Duration
	GeocoderAPIKey   string
	BlobstoreURL     string
	BlobstoreToken   string
	DBConnectTimeout time.Duration
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET env var is required")
	}

	geocoderKey := os.Getenv("GEOCODER_API_KEY")
	if geocoderKey == "" {
		return Config{}, errors.New("GEOCODER_API_KEY env var is required")
	}

	blobURL := os.Getenv("BLOBSTORE_URL")
	if blobURL == "" {
		return Config{}, errors.New("BLOBSTORE_URL env var is required")
	}

	ttl, err := time.ParseDuration(envOrDefault("TOKEN_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TOKEN_TTL: %w", err)
	}

	dbConnectTimeout, err := time.ParseDuration(envOrDefault("DB_CONNECT_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_CONNECT_TIMEOUT: %w", err)
	}

	return Config{
		DatabaseURL:      dsn,
		Addr:             fmt.Sprintf(":%s", envOrDefault("PORT", "8080")),
		AllowedOrigins:   parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		JWTSecret:        secret,
		TokenTTL:         ttl,
		GeocoderAPIKey:   geocoderKey,
		BlobstoreURL:     blobURL,
		BlobstoreToken:   os.Getenv("BLOBSTORE_TOKEN"),
		DBConnectTimeout: dbConnectTimeout,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
