package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (challenge store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Tokens
	AccessTokenSecret  string
	RefreshTokenSecret string
	TokenIssuer        string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	// OTP
	OTPCodeLength   int
	OTPCodeTTL      time.Duration
	OTPMaxAttempts  int64
	OTPResendLimit  int64
	OTPResendWindow time.Duration

	// Google sign-in
	GoogleClientID        string
	GoogleMobileClientIDs []string

	// Firebase (Facebook sign-in)
	FirebaseProjectID string

	// SMS gateway
	SMSAPIKeys  []string
	SMSSenderID string
	SMSBaseURL  string
	SMSTimeout  time.Duration

	// HTTP hardening
	MaxRequestBodySize int64
	RateLimit          RateLimitConfig
}

// RateLimitConfig holds per-endpoint-group rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool

	AuthRequestsPerWindow int
	AuthWindow            time.Duration

	OTPRequestsPerWindow int
	OTPWindow            time.Duration

	RefreshRequestsPerWindow int
	RefreshWindow            time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8000),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "ampora"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis defaults
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// Token defaults
		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
		TokenIssuer:        getEnv("TOKEN_ISSUER", "ampora"),
		AccessTokenTTL:     getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:    getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		// OTP defaults
		OTPCodeLength:   getEnvInt("OTP_CODE_LENGTH", 6),
		OTPCodeTTL:      getEnvDuration("OTP_TTL", 5*time.Minute),
		OTPMaxAttempts:  int64(getEnvInt("OTP_MAX_ATTEMPTS", 5)),
		OTPResendLimit:  int64(getEnvInt("OTP_RESEND_LIMIT", 3)),
		OTPResendWindow: getEnvDuration("OTP_RESEND_WINDOW", time.Hour),

		// Google sign-in (optional)
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleMobileClientIDs: getEnvList("GOOGLE_MOBILE_CLIENT_IDS"),

		// Firebase (optional)
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),

		// SMS gateway
		SMSAPIKeys:  getEnvList("SMS_API_KEYS"),
		SMSSenderID: getEnv("SMS_SENDER_ID", "TFCTOR"),
		SMSBaseURL:  getEnv("SMS_BASE_URL", ""),
		SMSTimeout:  getEnvDuration("SMS_TIMEOUT", 10*time.Second),

		// HTTP hardening
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 10*1024)),
		RateLimit: RateLimitConfig{
			Enabled:                  getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerWindow:    getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 20),
			AuthWindow:               getEnvDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
			OTPRequestsPerWindow:     getEnvInt("RATE_LIMIT_OTP_REQUESTS", 10),
			OTPWindow:                getEnvDuration("RATE_LIMIT_OTP_WINDOW", time.Minute),
			RefreshRequestsPerWindow: getEnvInt("RATE_LIMIT_REFRESH_REQUESTS", 30),
			RefreshWindow:            getEnvDuration("RATE_LIMIT_REFRESH_WINDOW", time.Minute),
		},
	}

	// Validate required fields
	if cfg.AccessTokenSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return cfg, nil
}

// HasGoogle returns true if Google sign-in is configured.
func (c *Config) HasGoogle() bool {
	return c.GoogleClientID != ""
}

// HasFirebase returns true if Facebook (Firebase) sign-in is configured.
func (c *Config) HasFirebase() bool {
	return c.FirebaseProjectID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList reads a comma-separated list, dropping empty entries.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
