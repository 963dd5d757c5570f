package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/dto"
	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/service/batch"
)

// EnrichHandler runs the contact flow for single rows and uploaded CSV files.
type EnrichHandler struct {
	sessions SessionOpener
}

// NewEnrichHandler constructs an EnrichHandler.
func NewEnrichHandler(sessions SessionOpener) *EnrichHandler {
	return &EnrichHandler{sessions: sessions}
}

// EnrichContact handles POST /api/v1/contacts/enrich with one JSON row.
func (h *EnrichHandler) EnrichContact(c echo.Context) error {
	var req dto.ContactEnrichRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	row := entity.ContactRow{
		Row:         1,
		LinkedInURL: strings.TrimSpace(req.LinkedInURL),
		Email:       strings.TrimSpace(req.Email),
		PersonName:  strings.TrimSpace(req.PersonName),
		CompanyName: strings.TrimSpace(req.CompanyName),
	}
	// Rows without a person identifier still run and come back as a failed result.
	if row.LinkedInURL == "" && row.Email == "" && row.PersonName == "" && row.CompanyName == "" {
		return Error(c, http.StatusBadRequest, "one of linkedin_url, email, person_name or company_name is required")
	}

	sess, err := openSession(c, h.sessions)
	if sess == nil {
		return err
	}
	defer closeSession(c, sess)

	result := sess.Runner.ProcessContact(c.Request().Context(), row, batch.ContactOptions{Goal: req.Goal})
	return Success(c, http.StatusOK, result.Message, result)
}

// EnrichCSV handles POST /api/v1/contacts/enrich/csv with a multipart "file" field.
func (h *EnrichHandler) EnrichCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	rows, err := batch.ParseContacts(file)
	if err != nil {
		var validationErr batch.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusBadRequest, "failed to read csv")
	}
	if len(rows) == 0 {
		return Error(c, http.StatusBadRequest, "csv file has no data rows")
	}

	sess, err := openSession(c, h.sessions)
	if sess == nil {
		return err
	}
	defer closeSession(c, sess)

	opts := batch.ContactOptions{Goal: strings.TrimSpace(c.FormValue("goal"))}
	report := sess.Runner.ProcessContacts(c.Request().Context(), sess.NewBatch(len(rows)), rows, opts)
	return Success(c, http.StatusOK, "contacts CSV processed", report)
}
