package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/dto"
	"github.com/octobees/contact-enricher/internal/middleware"
	"github.com/octobees/contact-enricher/internal/service/vault"
)

// AccountManager is the part of the credential vault an account owner may change.
type AccountManager interface {
	UpdateKeys(ctx context.Context, userID uuid.UUID, change vault.KeyChange) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// AccountHandler lets an authenticated account rotate keys, change its password or leave.
type AccountHandler struct {
	accounts AccountManager
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(accounts AccountManager) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// UpdateKeys handles PUT /api/v1/account/keys.
func (h *AccountHandler) UpdateKeys(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "missing user context")
	}

	var req dto.UpdateKeysRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	err := h.accounts.UpdateKeys(c.Request().Context(), userID, vault.KeyChange{
		ApolloKey:        req.ApolloKey,
		NotionToken:      req.NotionToken,
		NotionDatabaseID: req.NotionDatabaseID,
		AIKey:            req.AIKey,
		AIProvider:       req.AIProvider,
	})
	if err != nil {
		return fail(c, err, "unable to update keys")
	}
	return Success(c, http.StatusOK, "keys updated", nil)
}

// ChangePassword handles PUT /api/v1/account/password.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "missing user context")
	}

	var req dto.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return Error(c, http.StatusBadRequest, "current_password and new_password are required")
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, err, "unable to change password")
	}
	return Success(c, http.StatusOK, "password updated", nil)
}

// Delete handles DELETE /api/v1/account.
func (h *AccountHandler) Delete(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "missing user context")
	}
	if err := h.accounts.DeleteAccount(c.Request().Context(), userID); err != nil {
		return fail(c, err, "unable to delete account")
	}
	return c.NoContent(http.StatusNoContent)
}
