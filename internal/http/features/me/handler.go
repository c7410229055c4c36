package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/pdishant5/Might-Ampora-Backend/internal/http/features/common"
	"github.com/pdishant5/Might-Ampora-Backend/internal/http/middleware"
	"github.com/pdishant5/Might-Ampora-Backend/internal/httputil"
	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// ProfileService is the facade slice the profile handler needs.
type ProfileService interface {
	Profile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error
}

// Handler handles account profile endpoints.
type Handler struct {
	logger  *slog.Logger
	service ProfileService
}

// NewHandler creates a new profile handler.
func NewHandler(logger *slog.Logger, service ProfileService) *Handler {
	return &Handler{logger: logger, service: service}
}

// GetMe returns the current account's profile.
// GET /v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.service.Profile(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			httputil.Error(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.Error("profile lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewAccountResponse(account))
}

// DeleteMe permanently deletes the current account.
// DELETE /v1/me
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			httputil.Error(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.Error("account deletion failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
