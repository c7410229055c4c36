package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdishant5/Might-Ampora-Backend/internal/config"
	"github.com/pdishant5/Might-Ampora-Backend/internal/http/features/me"
	"github.com/pdishant5/Might-Ampora-Backend/internal/http/features/otp"
	"github.com/pdishant5/Might-Ampora-Backend/internal/http/features/provider"
	"github.com/pdishant5/Might-Ampora-Backend/internal/http/features/session"
	"github.com/pdishant5/Might-Ampora-Backend/internal/http/middleware"
	"github.com/pdishant5/Might-Ampora-Backend/internal/httputil"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/auth"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.AuthService
	MaxRequestBodySize int64
	RateLimitConfig    config.RateLimitConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	// Provider sign-in routes
	providerHandler := provider.NewHandler(cfg.Logger, cfg.AuthService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/google", providerHandler.Google)
		r.Post("/v1/auth/facebook", providerHandler.Facebook)
	})

	// OTP challenge routes
	otpHandler := otp.NewHandler(cfg.Logger, cfg.AuthService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["otp"])
		r.Post("/v1/auth/otp/request", otpHandler.Request)
		r.Post("/v1/auth/otp/verify", otpHandler.Verify)
		r.Post("/v1/auth/otp/register", otpHandler.Register)
	})

	// Session routes
	sessionHandler := session.NewHandler(cfg.Logger, cfg.AuthService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["refresh"])
		r.Post("/v1/auth/refresh", sessionHandler.Refresh)
	})
	r.Post("/v1/auth/logout", sessionHandler.Logout)

	// Account profile routes
	meHandler := me.NewHandler(cfg.Logger, cfg.AuthService)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.AuthService))
		r.Get("/v1/me", meHandler.GetMe)
		r.Delete("/v1/me", meHandler.DeleteMe)
	})

	return r
}
