package provider

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pdishant5/Might-Ampora-Backend/internal/http/features/common"
	"github.com/pdishant5/Might-Ampora-Backend/internal/httputil"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/auth"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// SignInService is the facade slice the provider handler needs.
type SignInService interface {
	SignInWithGoogle(ctx context.Context, idToken string) (*auth.SignInResult, error)
	SignInWithFacebook(ctx context.Context, idToken string) (*auth.SignInResult, error)
}

// Handler handles provider sign-in endpoints.
type Handler struct {
	logger  *slog.Logger
	service SignInService
}

// NewHandler creates a new provider sign-in handler.
func NewHandler(logger *slog.Logger, service SignInService) *Handler {
	return &Handler{logger: logger, service: service}
}

// SignInRequest carries the provider-issued ID token.
type SignInRequest struct {
	IDToken string `json:"id_token"`
}

// SignInResponse carries the account summary and the fresh token pair.
type SignInResponse struct {
	Account      common.AccountResponse `json:"account"`
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	TokenType    string                 `json:"token_type"`
	ExpiresIn    int                    `json:"expires_in"`
}

// Google signs in with a Google ID token.
// POST /v1/auth/google
func (h *Handler) Google(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, h.service.SignInWithGoogle)
}

// Facebook signs in with a Firebase-issued Facebook ID token.
// POST /v1/auth/facebook
func (h *Handler) Facebook(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, h.service.SignInWithFacebook)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, signIn func(context.Context, string) (*auth.SignInResult, error)) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IDToken == "" {
		httputil.Error(w, http.StatusBadRequest, "id_token is required")
		return
	}

	result, err := signIn(r.Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailRequired):
			httputil.Error(w, http.StatusBadRequest, "provider account does not supply an email address")
		case errors.Is(err, domain.ErrProviderTokenInvalid):
			httputil.Error(w, http.StatusUnauthorized, "provider token verification failed")
		default:
			h.logger.Error("provider sign-in failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "sign-in failed")
		}
		return
	}

	// A newly created account answers 201, an existing one 200.
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
