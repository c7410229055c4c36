package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// Default token lifetimes
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenConfig holds token issuance configuration. Access and refresh tokens
// are signed with distinct secrets.
type TokenConfig struct {
	AccessSecret    []byte
	RefreshSecret   []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

// Claims are the claims carried by both tokens of a pair.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// TokenService creates and rotates signed access/refresh token pairs.
//
// Exactly one refresh token is live per account: issuing a new pair replaces
// the stored token hash, which silently revokes every previously issued
// refresh token for that account.
type TokenService struct {
	config   TokenConfig
	accounts AccountStore
}

// NewTokenService creates a new token service.
func NewTokenService(config TokenConfig, accounts AccountStore) *TokenService {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if config.RefreshTokenTTL == 0 {
		config.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	return &TokenService{config: config, accounts: accounts}
}

// AccessTokenTTL returns the access token TTL.
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.config.AccessTokenTTL
}

// IssuePair signs a new access/refresh pair for the account and persists the
// refresh token hash and expiry, replacing any prior value.
func (s *TokenService) IssuePair(ctx context.Context, account *domain.Account) (*domain.TokenPair, error) {
	now := time.Now()

	accessToken, accessExpiry, err := s.sign(account, s.config.AccessSecret, now, s.config.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExpiry, err := s.sign(account, s.config.RefreshSecret, now, s.config.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.SetRefreshToken(ctx, account.ID, HashToken(refreshToken), refreshExpiry); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.config.AccessTokenTTL.Seconds()),
		ExpiresAt:    accessExpiry,
	}, nil
}

// Rotate verifies the presented refresh token, confirms it is the account's
// current one, and replaces it with a fresh pair. The replacement is a
// conditioned update: if another rotation got there first, the presented
// token is already superseded and the call fails with
// domain.ErrInvalidRefreshToken instead of silently succeeding.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*domain.Account, *domain.TokenPair, error) {
	if _, err := s.parse(refreshToken, s.config.RefreshSecret); err != nil {
		return nil, nil, domain.ErrInvalidRefreshToken
	}

	oldHash := HashToken(refreshToken)
	account, err := s.accounts.GetByRefreshTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, nil, domain.ErrInvalidRefreshToken
		}
		return nil, nil, err
	}
	if account.RefreshTokenExpiresAt != nil && account.RefreshTokenExpiresAt.Before(time.Now()) {
		return nil, nil, domain.ErrInvalidRefreshToken
	}

	now := time.Now()
	accessToken, accessExpiry, err := s.sign(account, s.config.AccessSecret, now, s.config.AccessTokenTTL)
	if err != nil {
		return nil, nil, err
	}
	newRefresh, refreshExpiry, err := s.sign(account, s.config.RefreshSecret, now, s.config.RefreshTokenTTL)
	if err != nil {
		return nil, nil, err
	}

	if err := s.accounts.ReplaceRefreshToken(ctx, account.ID, oldHash, HashToken(newRefresh), refreshExpiry); err != nil {
		return nil, nil, err
	}

	return account, &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.config.AccessTokenTTL.Seconds()),
		ExpiresAt:    accessExpiry,
	}, nil
}

// Revoke clears the account's stored refresh token (logout). Idempotent.
func (s *TokenService) Revoke(ctx context.Context, accountID uuid.UUID) error {
	return s.accounts.ClearRefreshToken(ctx, accountID)
}

// RevokeByToken resolves the account holding the presented refresh token and
// revokes it. An unknown or already-superseded token fails with
// domain.ErrInvalidRefreshToken.
func (s *TokenService) RevokeByToken(ctx context.Context, refreshToken string) error {
	account, err := s.accounts.GetByRefreshTokenHash(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidRefreshToken
		}
		return err
	}
	return s.Revoke(ctx, account.ID)
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString, s.config.AccessSecret)
	if err != nil {
		return nil, domain.ErrInvalidAccessToken
	}
	return claims, nil
}

func (s *TokenService) sign(account *domain.Account, secret []byte, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiry := now.Add(ttl)
	email := ""
	if account.Email != nil {
		email = *account.Email
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			Issuer:    s.config.Issuer,
			ID:        uuid.NewString(),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

func (s *TokenService) parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
