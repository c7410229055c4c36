package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// Challenge Store key prefixes. Each pending challenge for a subject is three
// independent TTL-bearing keys: the hashed code, the attempt counter and the
// resend counter.
const (
	codeKeyPrefix    = "otp:"
	resendKeyPrefix  = "otp_resend:"
	attemptKeyPrefix = "otp_attempts:"
)

// ChallengeStore is a Redis-backed store for OTP challenge state.
// All counter mutations go through atomic INCR+EXPIRE pipelines so that
// concurrent requests for the same subject cannot lose updates.
type ChallengeStore struct {
	client *redis.Client
}

// NewChallengeStore creates a new challenge store.
func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

// SetCode stores the hashed code with the code lifetime as TTL, overwriting
// any prior pending hash for the subject.
func (s *ChallengeStore) SetCode(ctx context.Context, subject, hash string, ttl time.Duration) error {
	if err := s.client.Set(ctx, codeKeyPrefix+subject, hash, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store code hash: %w", err)
	}
	return nil
}

// GetCode retrieves the stored code hash. An absent or expired key is
// reported as domain.ErrChallengeNotFound.
func (s *ChallengeStore) GetCode(ctx context.Context, subject string) (string, error) {
	hash, err := s.client.Get(ctx, codeKeyPrefix+subject).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrChallengeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read code hash: %w", err)
	}
	return hash, nil
}

// Consume deletes the code hash and the attempt counter in one atomic
// pipeline: both disappear together, or neither does.
func (s *ChallengeStore) Consume(ctx context.Context, subject string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, codeKeyPrefix+subject)
	pipe.Del(ctx, attemptKeyPrefix+subject)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}
	return nil
}

// ResendCount returns the current resend counter for the subject.
func (s *ChallengeStore) ResendCount(ctx context.Context, subject string) (int64, error) {
	return s.counter(ctx, resendKeyPrefix+subject)
}

// IncrementResend atomically increments the resend counter and resets its
// TTL to the rolling resend window.
func (s *ChallengeStore) IncrementResend(ctx context.Context, subject string, window time.Duration) error {
	return s.incrementWithExpire(ctx, resendKeyPrefix+subject, window)
}

// AttemptCount returns the current attempt counter for the subject.
func (s *ChallengeStore) AttemptCount(ctx context.Context, subject string) (int64, error) {
	return s.counter(ctx, attemptKeyPrefix+subject)
}

// IncrementAttempts atomically increments the attempt counter and resets its TTL.
func (s *ChallengeStore) IncrementAttempts(ctx context.Context, subject string, ttl time.Duration) error {
	return s.incrementWithExpire(ctx, attemptKeyPrefix+subject, ttl)
}

func (s *ChallengeStore) counter(ctx context.Context, key string) (int64, error) {
	count, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", key, err)
	}
	return count, nil
}

func (s *ChallengeStore) incrementWithExpire(ctx context.Context, key string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment counter %s: %w", key, err)
	}
	return nil
}
