package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/middleware"
	"github.com/octobees/contact-enricher/internal/service"
	"github.com/octobees/contact-enricher/internal/service/session"
	"github.com/octobees/contact-enricher/internal/service/strategy"
	"github.com/octobees/contact-enricher/internal/service/vault"
)

// SessionOpener opens the per-account collaborators for an authenticated request.
type SessionOpener interface {
	ForUser(ctx context.Context, userID uuid.UUID) (*session.Session, error)
}

// statusFor maps domain errors onto HTTP statuses. Client errors carry their own message.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, vault.ErrInvalidEmail),
		errors.Is(err, vault.ErrPasswordTooShort),
		errors.Is(err, vault.ErrNewPasswordTooShort),
		errors.Is(err, vault.ErrMissingKeys),
		errors.Is(err, vault.ErrUnknownAIProvider),
		errors.Is(err, service.ErrEmptyCredentials),
		errors.Is(err, strategy.ErrEmptyGoal),
		errors.Is(err, strategy.ErrNoAIKey):
		return http.StatusBadRequest, true
	case errors.Is(err, vault.ErrInvalidCredentials), errors.Is(err, vault.ErrWrongPassword):
		return http.StatusUnauthorized, true
	case errors.Is(err, vault.ErrAccountNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, vault.ErrEmailRegistered):
		return http.StatusConflict, true
	case errors.Is(err, strategy.ErrMalformedResponse):
		return http.StatusBadGateway, true
	default:
		return http.StatusInternalServerError, false
	}
}

// fail writes err through the envelope. Unexpected errors are logged and reported with fallback.
func fail(c echo.Context, err error, fallback string) error {
	status, known := statusFor(err)
	if known {
		return Error(c, status, err.Error())
	}
	slog.ErrorContext(c.Request().Context(), fallback, slog.Any("error", err))
	return Error(c, status, fallback)
}

// openSession writes the error response itself and returns a nil session when it fails.
func openSession(c echo.Context, sessions SessionOpener) (*session.Session, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return nil, Error(c, http.StatusUnauthorized, "missing user context")
	}
	s, err := sessions.ForUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, vault.ErrAccountNotFound) {
			return nil, Error(c, http.StatusUnauthorized, "account no longer exists")
		}
		return nil, Error(c, http.StatusBadRequest, "stored credentials are unusable: "+err.Error())
	}
	return s, nil
}

// closeSession releases the session's model client once the response is written.
func closeSession(c echo.Context, s *session.Session) {
	if err := s.Close(); err != nil {
		slog.WarnContext(c.Request().Context(), "failed to close session", slog.Any("error", err))
	}
}
