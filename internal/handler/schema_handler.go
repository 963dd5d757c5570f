package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/dto"
)

// SchemaHandler checks and extends the account's destination database.
type SchemaHandler struct {
	sessions SessionOpener
}

// NewSchemaHandler constructs a SchemaHandler.
func NewSchemaHandler(sessions SessionOpener) *SchemaHandler {
	return &SchemaHandler{sessions: sessions}
}

// Validate handles GET /api/v1/schema.
func (h *SchemaHandler) Validate(c echo.Context) error {
	sess, err := openSession(c, h.sessions)
	if sess == nil {
		return err
	}
	defer closeSession(c, sess)

	report, err := sess.Schema.ValidateSchema(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusBadGateway, "unable to read database schema")
	}
	message := "schema is valid"
	if !report.Valid() {
		message = "schema is missing required properties"
	}
	return Success(c, http.StatusOK, message, report)
}

// Setup handles POST /api/v1/schema/setup.
func (h *SchemaHandler) Setup(c echo.Context) error {
	var req dto.SchemaSetupRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return Error(c, http.StatusBadRequest, "invalid payload")
		}
	}

	sess, err := openSession(c, h.sessions)
	if sess == nil {
		return err
	}
	defer closeSession(c, sess)

	result, err := sess.Schema.SetupSchema(c.Request().Context(), req.IncludeOptional)
	if err != nil {
		return Error(c, http.StatusBadGateway, "unable to update database schema")
	}
	if !result.Complete() {
		return Partial(c, result.Message, result)
	}
	return Success(c, http.StatusOK, result.Message, result)
}
