// Package config loads runtime settings from the environment. Every
// collaborator receives its settings through this struct; nothing in the
// application reads env vars directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultMaxUploadBytes caps guest uploads at 100 MB.
const DefaultMaxUploadBytes = 100 << 20

// Config holds runtime settings for the GuestSnap server.
//
// Fields:
//   - Port: HTTP listen port.
//   - DatabaseURL: Postgres DSN.
//   - JWTSecret: HMAC secret for signing access tokens (HS256).
//   - TokenTTL: access token lifetime.
//   - FrontendOrigin: base URL of the web client, used to build guest links.
//   - MaxUploadBytes: per-file ceiling for guest uploads.
//   - S3Bucket / S3Region / S3Endpoint / S3AccessKey / S3SecretKey /
//     S3PublicBaseURL: object storage settings (MinIO-compatible).
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	FrontendOrigin string
	MaxUploadBytes int64

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// Load reads the environment and returns a validated Config.
// JWT_SECRET and DATABASE_URL have no usable defaults and must be set.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       24 * time.Hour,
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		MaxUploadBytes: DefaultMaxUploadBytes,

		S3Bucket:        getEnv("S3_BUCKET", "guestsnap-media"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		cfg.TokenTTL = ttl
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
		cfg.MaxUploadBytes = n
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
