package domain

import "errors"

// Account errors
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists for one of the identity keys")
	ErrAccountConflict  = errors.New("unresolved conflict during account creation")
)

// OTP challenge errors
var (
	ErrChallengeNotFound   = errors.New("no pending code, or code expired or already consumed")
	ErrInvalidCode         = errors.New("invalid code")
	ErrAttemptsExceeded    = errors.New("too many wrong attempts")
	ErrResendLimitExceeded = errors.New("too many code requests, try again later")
	ErrDeliveryFailed      = errors.New("code delivery failed")
)

// Token errors
var (
	ErrInvalidRefreshToken = errors.New("invalid, expired or superseded refresh token")
	ErrInvalidAccessToken  = errors.New("invalid or expired access token")
)

// Provider errors
var (
	ErrProviderTokenInvalid = errors.New("provider token verification failed")
	ErrEmailRequired        = errors.New("provider account does not supply an email address")
)
