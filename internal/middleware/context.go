package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys used to store request metadata on echo.Context.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyRequestID = "request_id"
)

// UserID returns the authenticated account id set by JWT.
func UserID(c echo.Context) (uuid.UUID, bool) {
	raw, _ := c.Get(ContextKeyUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// UserEmail returns the authenticated account email, or "".
func UserEmail(c echo.Context) string {
	email, _ := c.Get(ContextKeyUserEmail).(string)
	return email
}

// RequestIDFromContext extracts the request identifier if available.
func RequestIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyRequestID).(string); ok {
		return val
	}
	return ""
}

// reject writes the same envelope as handler.Error.
func reject(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{
		"status":     "error",
		"message":    message,
		"request_id": RequestIDFromContext(c),
	})
}
