package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/middleware"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// APIResponse describes the standard envelope returned by the API. RequestID matches the
// X-Request-ID header and the request_id attribute in server logs.
type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return respond(c, status, StatusSuccess, message, data)
}

// Partial reports a request that was applied only in part with 207 Multi-Status.
func Partial(c echo.Context, message string, data any) error {
	return respond(c, http.StatusMultiStatus, StatusPartial, message, data)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return respond(c, status, StatusError, message, nil)
}

func respond(c echo.Context, status int, state, message string, data any) error {
	return c.JSON(status, APIResponse{
		Status:    state,
		Message:   message,
		Data:      data,
		RequestID: middleware.RequestIDFromContext(c),
	})
}
