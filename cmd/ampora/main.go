package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pdishant5/Might-Ampora-Backend/internal/config"
	httpserver "github.com/pdishant5/Might-Ampora-Backend/internal/http"
	"github.com/pdishant5/Might-Ampora-Backend/internal/notification"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/auth"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to the account store
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Connect to the challenge store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	cancelPing()

	logger.Info("connected to redis")

	// Initialize repositories
	accountsRepo := repository.NewAccountsRepository(db)
	challengeStore := repository.NewChallengeStore(redisClient)

	// Initialize the SMS gateway
	smsService := notification.NewSMSService(notification.SMSConfig{
		BaseURL:  cfg.SMSBaseURL,
		APIKeys:  cfg.SMSAPIKeys,
		SenderID: cfg.SMSSenderID,
		Timeout:  cfg.SMSTimeout,
	}, logger)
	if len(cfg.SMSAPIKeys) == 0 {
		logger.Warn("no sms credentials configured, code delivery will fail")
	}

	// Initialize core services
	otpService := auth.NewOTPService(auth.OTPConfig{
		CodeLength:   cfg.OTPCodeLength,
		CodeTTL:      cfg.OTPCodeTTL,
		MaxAttempts:  cfg.OTPMaxAttempts,
		ResendLimit:  cfg.OTPResendLimit,
		ResendWindow: cfg.OTPResendWindow,
	}, challengeStore, smsService, logger)

	linker := auth.NewIdentityLinker(accountsRepo, logger)

	tokenService := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:    []byte(cfg.AccessTokenSecret),
		RefreshSecret:   []byte(cfg.RefreshTokenSecret),
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		Issuer:          cfg.TokenIssuer,
	}, accountsRepo)

	googleVerifier := auth.NewGoogleVerifier(auth.GoogleConfig{
		ClientID:        cfg.GoogleClientID,
		MobileClientIDs: cfg.GoogleMobileClientIDs,
	})
	if cfg.HasGoogle() {
		logger.Info("Google sign-in enabled")
	}

	firebaseVerifier := auth.NewFirebaseVerifier(auth.FirebaseConfig{
		ProjectID: cfg.FirebaseProjectID,
	})
	if cfg.HasFirebase() {
		logger.Info("Facebook sign-in enabled")
	}

	authService := auth.NewAuthService(
		logger,
		accountsRepo,
		googleVerifier,
		firebaseVerifier,
		linker,
		otpService,
		tokenService,
	)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		AuthService:        authService,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		RateLimitConfig:    cfg.RateLimit,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
