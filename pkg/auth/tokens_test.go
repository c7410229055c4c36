package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

func testTokenService(store AccountStore) *TokenService {
	return NewTokenService(TokenConfig{
		AccessSecret:    []byte("test-access-secret"),
		RefreshSecret:   []byte("test-refresh-secret"),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "test",
	}, store)
}

func seedAccount(t *testing.T, store *fakeAccountStore) *domain.Account {
	t.Helper()
	email := "alice@example.com"
	account := &domain.Account{
		ID:        uuid.New(),
		Email:     &email,
		Providers: []string{string(domain.ProviderGoogle)},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := store.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestTokenService_IssuePair(t *testing.T) {
	store := newFakeAccountStore()
	account := seedAccount(t, store)
	svc := testTokenService(store)

	pair, err := svc.IssuePair(context.Background(), account)
	if err != nil {
		t.Fatalf("IssuePair error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("IssuePair returned empty tokens")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens are identical")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", pair.TokenType)
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", pair.ExpiresIn)
	}

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken error = %v", err)
	}
	if claims.Subject != account.ID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, account.ID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email claim = %q, want alice@example.com", claims.Email)
	}

	// The stored hash must match the issued refresh token.
	if account.RefreshTokenHash == nil || *account.RefreshTokenHash != HashToken(pair.RefreshToken) {
		t.Error("stored refresh token hash does not match the issued token")
	}
}

func TestTokenService_ValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	store := newFakeAccountStore()
	account := seedAccount(t, store)
	svc := testTokenService(store)

	pair, err := svc.IssuePair(context.Background(), account)
	if err != nil {
		t.Fatalf("IssuePair error = %v", err)
	}

	// Signed with the refresh secret, must not pass as an access token.
	if _, err := svc.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, domain.ErrInvalidAccessToken) {
		t.Errorf("error = %v, want ErrInvalidAccessToken", err)
	}
}

func TestTokenService_Rotate(t *testing.T) {
	store := newFakeAccountStore()
	account := seedAccount(t, store)
	svc := testTokenService(store)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, account)
	if err != nil {
		t.Fatalf("IssuePair error = %v", err)
	}

	rotatedAccount, rotated, err := svc.Rotate(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Rotate error = %v", err)
	}
	if rotatedAccount.ID != account.ID {
		t.Errorf("rotated account = %s, want %s", rotatedAccount.ID, account.ID)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Error("rotation returned the same refresh token")
	}

	// The consumed token is superseded and cannot rotate again.
	if _, _, err := svc.Rotate(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("second rotation error = %v, want ErrInvalidRefreshToken", err)
	}

	// The fresh one can.
	if _, _, err := svc.Rotate(ctx, rotated.RefreshToken); err != nil {
		t.Errorf("rotating the fresh token error = %v", err)
	}
}

func TestTokenService_Rotate_InvalidInputs(t *testing.T) {
	store := newFakeAccountStore()
	account := seedAccount(t, store)
	svc := testTokenService(store)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, account)
	if err != nil {
		t.Fatalf("IssuePair error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"access token presented as refresh", pair.AccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Rotate(ctx, tt.token); !errors.Is(err, domain.ErrInvalidRefreshToken) {
				t.Errorf("Rotate(%q) error = %v, want ErrInvalidRefreshToken", tt.name, err)
			}
		})
	}
}

func TestTokenService_Rotate_ExpiredSession(t *testing.T) {
	store := newFakeAccountStore()
	account := seedAccount(t, store)
	svc := testTokenService(store)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, account)
	if err != nil {
		t.Fatalf("IssuePair error = %v", err)
	}

	// Expire the stored session out from under the still-parseable token.
	past := time.Now().Add(-time.Hour)
	account.RefreshTokenExpiresAt = &past

	if _, _, err := svc.Rotate(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestTokenService_RevokeByToken(t *testing.T) {
	store := newFakeAccountStore()
	account := seedAccount(t, store)
	svc := testTokenService(store)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, account)
	if err != nil {
		t.Fatalf("IssuePair error = %v", err)
	}

	if err := svc.RevokeByToken(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("RevokeByToken error = %v", err)
	}
	if account.RefreshTokenHash != nil {
		t.Error("refresh token hash still set after revocation")
	}

	// The revoked token no longer resolves.
	if err := svc.RevokeByToken(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("second revoke error = %v, want ErrInvalidRefreshToken", err)
	}
	if _, _, err := svc.Rotate(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Errorf("rotate after revoke error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestTokenService_Revoke_Idempotent(t *testing.T) {
	store := newFakeAccountStore()
	account := seedAccount(t, store)
	svc := testTokenService(store)
	ctx := context.Background()

	if _, err := svc.IssuePair(ctx, account); err != nil {
		t.Fatalf("IssuePair error = %v", err)
	}
	if err := svc.Revoke(ctx, account.ID); err != nil {
		t.Fatalf("first Revoke error = %v", err)
	}
	if err := svc.Revoke(ctx, account.ID); err != nil {
		t.Errorf("second Revoke error = %v, want nil", err)
	}
}

func TestTokenService_ValidateAccessToken_Expired(t *testing.T) {
	store := newFakeAccountStore()
	account := seedAccount(t, store)

	shortLived := NewTokenService(TokenConfig{
		AccessSecret:   []byte("test-access-secret"),
		RefreshSecret:  []byte("test-refresh-secret"),
		AccessTokenTTL: -time.Minute, // already expired at issuance
		Issuer:         "test",
	}, store)

	pair, err := shortLived.IssuePair(context.Background(), account)
	if err != nil {
		t.Fatalf("IssuePair error = %v", err)
	}
	if _, err := shortLived.ValidateAccessToken(pair.AccessToken); !errors.Is(err, domain.ErrInvalidAccessToken) {
		t.Errorf("error = %v, want ErrInvalidAccessToken", err)
	}
}
