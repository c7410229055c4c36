package otp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/pdishant5/Might-Ampora-Backend/internal/http/features/common"
	"github.com/pdishant5/Might-Ampora-Backend/internal/httputil"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/auth"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// E.164-ish: optional +, 8 to 15 digits.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// OTPSignInService is the facade slice the OTP handler needs.
type OTPSignInService interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*auth.SignInResult, error)
	CompleteRegistration(ctx context.Context, phone, name, email, location string) (*domain.Account, error)
}

// Handler handles OTP challenge endpoints.
type Handler struct {
	logger  *slog.Logger
	service OTPSignInService
}

// NewHandler creates a new OTP handler.
func NewHandler(logger *slog.Logger, service OTPSignInService) *Handler {
	return &Handler{logger: logger, service: service}
}

// RequestRequest asks for a code to be sent to a phone number.
type RequestRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// VerifyRequest presents a candidate code for a phone number.
type VerifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

// RegisterRequest completes an OTP sign-up with profile details.
type RegisterRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Location    string `json:"location"`
}

// SignInResponse carries the account summary and the fresh token pair.
type SignInResponse struct {
	Account      common.AccountResponse `json:"account"`
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	TokenType    string                 `json:"token_type"`
	ExpiresIn    int                    `json:"expires_in"`
}

// Request sends a one-time code to the phone number.
// POST /v1/auth/otp/request
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	var req RequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !phonePattern.MatchString(req.PhoneNumber) {
		httputil.Error(w, http.StatusBadRequest, "phone_number must be a valid phone number")
		return
	}

	err := h.service.RequestOTP(r.Context(), req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrResendLimitExceeded):
			httputil.Error(w, http.StatusTooManyRequests, "too many code requests, try again later")
		case errors.Is(err, domain.ErrDeliveryFailed):
			// The code is stored and stays verifiable; only delivery failed.
			httputil.Error(w, http.StatusBadGateway, "code delivery failed")
		default:
			h.logger.Error("otp request failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to request code")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "code sent"})
}

// Verify checks a candidate code and signs the phone number in.
// POST /v1/auth/otp/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !phonePattern.MatchString(req.PhoneNumber) {
		httputil.Error(w, http.StatusBadRequest, "phone_number must be a valid phone number")
		return
	}
	if req.Code == "" {
		httputil.Error(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.service.VerifyOTP(r.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChallengeNotFound):
			httputil.Error(w, http.StatusNotFound, "no pending code, request a new one")
		case errors.Is(err, domain.ErrAttemptsExceeded):
			httputil.Error(w, http.StatusTooManyRequests, "too many wrong attempts, request a new code later")
		case errors.Is(err, domain.ErrInvalidCode):
			httputil.Error(w, http.StatusUnauthorized, "invalid code")
		default:
			h.logger.Error("otp verification failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to verify code")
		}
		return
	}

	status := http.StatusOK
	if result.New {
		status = http.StatusCreated
	}
	httputil.JSON(w, status, SignInResponse{
		Account:      common.NewAccountResponse(result.Account),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    result.Tokens.TokenType,
		ExpiresIn:    result.Tokens.ExpiresIn,
	})
}

// Register completes an OTP sign-up with profile details. Fields already set
// on the account are left untouched.
// POST /v1/auth/otp/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !phonePattern.MatchString(req.PhoneNumber) {
		httputil.Error(w, http.StatusBadRequest, "phone_number must be a valid phone number")
		return
	}

	account, err := h.service.CompleteRegistration(r.Context(), req.PhoneNumber, req.Name, req.Email, req.Location)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			httputil.Error(w, http.StatusNotFound, "no account for this phone number, sign in with a code first")
		case errors.Is(err, domain.ErrDuplicateAccount):
			httputil.Error(w, http.StatusConflict, "email already in use")
		default:
			h.logger.Error("registration completion failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to complete registration")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"account": common.NewAccountResponse(account),
	})
}
