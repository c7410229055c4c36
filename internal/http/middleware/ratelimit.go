package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/pdishant5/Might-Ampora-Backend/internal/config"
	"github.com/pdishant5/Might-Ampora-Backend/internal/httputil"
)

// RateLimitConfig holds rate limiting configuration for one endpoint group.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// CreateRateLimiters creates the per-group rate limiting middleware.
// The OTP group is deliberately the tightest: the per-subject resend and
// attempt counters already throttle a single phone number, this guards the
// endpoint itself.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return map[string]func(http.Handler) http.Handler{
			"auth":    noOp,
			"otp":     noOp,
			"refresh": noOp,
		}
	}

	return map[string]func(http.Handler) http.Handler{
		"auth": RateLimit(RateLimitConfig{
			Requests: cfg.AuthRequestsPerWindow,
			Window:   cfg.AuthWindow,
			Logger:   logger,
		}),
		"otp": RateLimit(RateLimitConfig{
			Requests: cfg.OTPRequestsPerWindow,
			Window:   cfg.OTPWindow,
			Logger:   logger,
		}),
		"refresh": RateLimit(RateLimitConfig{
			Requests: cfg.RefreshRequestsPerWindow,
			Window:   cfg.RefreshWindow,
			Logger:   logger,
		}),
	}
}
