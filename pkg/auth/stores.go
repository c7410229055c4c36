package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// AccountStore is the persistence interface the auth services depend on.
// Implemented by repository.AccountsRepository.
type AccountStore interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
	GetByProviderID(ctx context.Context, provider domain.Provider, externalID string) (*domain.Account, error)
	GetByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	SetRefreshToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ReplaceRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChallengeStore is the TTL key-value interface backing OTP challenges.
// Implemented by repository.ChallengeStore.
type ChallengeStore interface {
	SetCode(ctx context.Context, subject, hash string, ttl time.Duration) error
	GetCode(ctx context.Context, subject string) (string, error)
	Consume(ctx context.Context, subject string) error
	ResendCount(ctx context.Context, subject string) (int64, error)
	IncrementResend(ctx context.Context, subject string, window time.Duration) error
	AttemptCount(ctx context.Context, subject string) (int64, error)
	IncrementAttempts(ctx context.Context, subject string, ttl time.Duration) error
}

// CodeSender delivers a plaintext one-time code to a destination.
// Implemented by notification.SMSService.
type CodeSender interface {
	Send(ctx context.Context, destination, code string) error
}

// IdentityVerifier verifies an opaque provider-issued token and extracts
// the external identity it attests. One implementation per provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*ExternalIdentity, error)
}

// ExternalIdentity is a verified identity from an external provider.
type ExternalIdentity struct {
	Provider   domain.Provider
	ExternalID string
	Email      string
	Name       string
	Phone      string
}
