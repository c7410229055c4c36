package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// Default OTP parameters, matching the reference behavior.
const (
	DefaultCodeLength   = 6
	DefaultCodeTTL      = 5 * time.Minute
	DefaultMaxAttempts  = 5
	DefaultResendLimit  = 3
	DefaultResendWindow = time.Hour

	// Attempt counter TTL never drops below this floor even when the code
	// lifetime is configured shorter.
	minAttemptTTL = 300 * time.Second

	defaultHashConcurrency = 8
)

// OTPConfig holds OTP challenge configuration.
type OTPConfig struct {
	CodeLength   int
	CodeTTL      time.Duration
	MaxAttempts  int64
	ResendLimit  int64
	ResendWindow time.Duration
	// HashConcurrency bounds concurrent Argon2 hashing. Each hash holds a
	// 64 MB working set, so an OTP burst must not run them all at once.
	HashConcurrency int
}

// OTPService issues, rate-limits and verifies one-time codes.
//
// State per subject lives in the challenge store as three independent
// TTL-bearing keys: the hashed code, the attempt counter (window = code
// lifetime) and the resend counter (longer rolling window). Neither counter
// is reset by a successful verification.
type OTPService struct {
	config  OTPConfig
	store   ChallengeStore
	sender  CodeSender
	logger  *slog.Logger
	hashSem chan struct{}
}

// NewOTPService creates a new OTP service.
func NewOTPService(config OTPConfig, store ChallengeStore, sender CodeSender, logger *slog.Logger) *OTPService {
	if config.CodeLength == 0 {
		config.CodeLength = DefaultCodeLength
	}
	if config.CodeTTL == 0 {
		config.CodeTTL = DefaultCodeTTL
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.ResendLimit == 0 {
		config.ResendLimit = DefaultResendLimit
	}
	if config.ResendWindow == 0 {
		config.ResendWindow = DefaultResendWindow
	}
	if config.HashConcurrency == 0 {
		config.HashConcurrency = defaultHashConcurrency
	}
	return &OTPService{
		config:  config,
		store:   store,
		sender:  sender,
		logger:  logger,
		hashSem: make(chan struct{}, config.HashConcurrency),
	}
}

// RequestChallenge generates and dispatches a new code for the subject,
// invalidating any prior pending code.
//
// A dispatch failure is reported as domain.ErrDeliveryFailed but does not
// retract the already-stored hash: the code stays independently verifiable,
// so delivery can be retried out of band.
func (s *OTPService) RequestChallenge(ctx context.Context, subject string) error {
	resends, err := s.store.ResendCount(ctx, subject)
	if err != nil {
		return err
	}
	// Terminal for this window: do not increment further.
	if resends >= s.config.ResendLimit {
		return domain.ErrResendLimitExceeded
	}

	code, err := GenerateCode(s.config.CodeLength)
	if err != nil {
		return err
	}

	hash, err := s.hashCode(ctx, code)
	if err != nil {
		return err
	}

	if err := s.store.SetCode(ctx, subject, hash, s.config.CodeTTL); err != nil {
		return err
	}
	if err := s.store.IncrementResend(ctx, subject, s.config.ResendWindow); err != nil {
		return err
	}

	if err := s.sender.Send(ctx, subject, code); err != nil {
		s.logger.Warn("otp dispatch failed, code remains verifiable",
			"subject", subject, "error", err)
		return domain.ErrDeliveryFailed
	}

	return nil
}

// VerifyChallenge checks a candidate code for the subject. On success the
// code hash and attempt counter are consumed atomically; the code cannot be
// verified a second time.
func (s *OTPService) VerifyChallenge(ctx context.Context, subject, candidate string) error {
	hash, err := s.store.GetCode(ctx, subject)
	if err != nil {
		return err
	}

	attempts, err := s.store.AttemptCount(ctx, subject)
	if err != nil {
		return err
	}
	// Lockout is independent of and stricter than TTL expiry: a correct
	// candidate is rejected too once the limit is reached.
	if attempts >= s.config.MaxAttempts {
		return domain.ErrAttemptsExceeded
	}

	if !s.verifyCode(ctx, candidate, hash) {
		attemptTTL := s.config.CodeTTL
		if attemptTTL < minAttemptTTL {
			attemptTTL = minAttemptTTL
		}
		if err := s.store.IncrementAttempts(ctx, subject, attemptTTL); err != nil {
			return err
		}
		return domain.ErrInvalidCode
	}

	if err := s.store.Consume(ctx, subject); err != nil {
		return fmt.Errorf("failed to consume verified challenge: %w", err)
	}
	return nil
}

// hashCode runs the Argon2 hash under the concurrency bound.
func (s *OTPService) hashCode(ctx context.Context, code string) (string, error) {
	select {
	case s.hashSem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-s.hashSem }()
	return HashCode(code)
}

func (s *OTPService) verifyCode(ctx context.Context, candidate, hash string) bool {
	select {
	case s.hashSem <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	defer func() { <-s.hashSem }()
	return VerifyCode(candidate, hash)
}
