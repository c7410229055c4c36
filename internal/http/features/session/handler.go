package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pdishant5/Might-Ampora-Backend/internal/httputil"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// SessionService is the facade slice the session handler needs.
type SessionService interface {
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Handler handles token refresh and logout.
type Handler struct {
	logger  *slog.Logger
	service SessionService
}

// NewHandler creates a new session handler.
func NewHandler(logger *slog.Logger, service SessionService) *Handler {
	return &Handler{logger: logger, service: service}
}

// RefreshRequest presents a refresh token for rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest presents a refresh token for revocation.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries the rotated token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Refresh rotates a refresh token into a new pair. The presented token is
// invalid afterwards regardless of which side wins a concurrent rotation.
// POST /v1/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		httputil.Error(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRefreshToken) {
			httputil.Error(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}
		h.logger.Error("token refresh failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	httputil.JSON(w, http.StatusOK, TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

// Logout revokes the session holding the presented refresh token.
// POST /v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		httputil.Error(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrInvalidRefreshToken) {
			httputil.Error(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.logger.Error("logout failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
