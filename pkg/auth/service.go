package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// AuthService is the thin session facade composing verification, linking and
// token issuance behind the sign-in, refresh and logout operations.
type AuthService struct {
	logger   *slog.Logger
	accounts AccountStore
	google   IdentityVerifier
	facebook IdentityVerifier
	linker   *IdentityLinker
	otp      *OTPService
	tokens   *TokenService
}

// NewAuthService creates a new auth service.
func NewAuthService(
	logger *slog.Logger,
	accounts AccountStore,
	google IdentityVerifier,
	facebook IdentityVerifier,
	linker *IdentityLinker,
	otp *OTPService,
	tokens *TokenService,
) *AuthService {
	return &AuthService{
		logger:   logger,
		accounts: accounts,
		google:   google,
		facebook: facebook,
		linker:   linker,
		otp:      otp,
		tokens:   tokens,
	}
}

// SignInResult carries the resolved account, its fresh token pair, and
// whether the account was created by this sign-in.
type SignInResult struct {
	Account *domain.Account
	Tokens  *domain.TokenPair
	New     bool
}

// SignInWithGoogle verifies a Google ID token, resolves the account and
// issues a token pair.
func (s *AuthService) SignInWithGoogle(ctx context.Context, idToken string) (*SignInResult, error) {
	return s.signInWithProvider(ctx, s.google, idToken)
}

// SignInWithFacebook verifies a Firebase-issued Facebook ID token, resolves
// the account and issues a token pair.
func (s *AuthService) SignInWithFacebook(ctx context.Context, idToken string) (*SignInResult, error) {
	return s.signInWithProvider(ctx, s.facebook, idToken)
}

func (s *AuthService) signInWithProvider(ctx context.Context, verifier IdentityVerifier, idToken string) (*SignInResult, error) {
	ident, err := verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	account, isNew, err := s.linker.ResolveOrCreate(ctx, *ident)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("provider sign-in",
		"account_id", account.ID, "provider", ident.Provider, "new", isNew)
	return &SignInResult{Account: account, Tokens: tokens, New: isNew}, nil
}

// RequestOTP issues a one-time code challenge for the phone number.
func (s *AuthService) RequestOTP(ctx context.Context, phone string) error {
	return s.otp.RequestChallenge(ctx, phone)
}

// VerifyOTP verifies a one-time code and signs the phone number in,
// creating an account on first use.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (*SignInResult, error) {
	if err := s.otp.VerifyChallenge(ctx, phone, code); err != nil {
		return nil, err
	}

	account, isNew, err := s.linker.ResolveOrCreate(ctx, ExternalIdentity{
		Provider:   domain.ProviderMobile,
		ExternalID: phone,
		Phone:      phone,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("otp sign-in", "account_id", account.ID, "new", isNew)
	return &SignInResult{Account: account, Tokens: tokens, New: isNew}, nil
}

// CompleteRegistration backfills profile fields onto the account created by
// an OTP sign-up. Only empty fields are filled; an existing email or name is
// never silently replaced.
func (s *AuthService) CompleteRegistration(ctx context.Context, phone, name, email, location string) (*domain.Account, error) {
	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	changed := false
	if account.Name == nil && name != "" {
		account.Name = &name
		changed = true
	}
	if account.Email == nil && email != "" {
		account.Email = &email
		changed = true
	}
	if account.Location == nil && location != "" {
		account.Location = &location
		changed = true
	}

	if changed {
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, err
		}
	}
	return account, nil
}

// Refresh rotates the presented refresh token into a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	_, tokens, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout revokes the session holding the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeByToken(ctx, refreshToken)
}

// Profile returns the account record.
func (s *AuthService) Profile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// DeleteAccount permanently removes the account.
func (s *AuthService) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.accounts.Delete(ctx, accountID)
}

// ValidateAccessToken exposes access-token validation for middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}
