package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/dto"
	"github.com/octobees/contact-enricher/internal/service/batch"
)

// CompaniesHandler runs the company prospecting flow.
type CompaniesHandler struct {
	sessions SessionOpener
}

// NewCompaniesHandler constructs a CompaniesHandler.
func NewCompaniesHandler(sessions SessionOpener) *CompaniesHandler {
	return &CompaniesHandler{sessions: sessions}
}

// Enrich handles POST /api/v1/companies/enrich. It accepts a multipart "file" with a
// company_name column or a JSON body listing the companies.
func (h *CompaniesHandler) Enrich(c echo.Context) error {
	req, err := h.readRequest(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	if len(req.Companies) == 0 {
		return Error(c, http.StatusBadRequest, "at least one company is required")
	}

	sess, err := openSession(c, h.sessions)
	if sess == nil {
		return err
	}
	defer closeSession(c, sess)

	limit := req.Limit
	if limit <= 0 {
		limit = sess.PeopleCap
	}
	report, err := sess.Runner.ProcessCompanies(c.Request().Context(), sess.NewBatch(len(req.Companies)), req.Companies, batch.CompanyOptions{
		Goal:     req.Goal,
		Industry: req.Industry,
		Limit:    limit,
	})
	if err != nil {
		return fail(c, err, "unable to generate targeting strategy")
	}
	return Success(c, http.StatusOK, "companies processed", report)
}

func (h *CompaniesHandler) readRequest(c echo.Context) (dto.CompaniesEnrichRequest, error) {
	var req dto.CompaniesEnrichRequest
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			return req, errors.New("invalid payload")
		}
		req.Companies = compact(req.Companies)
		return req, nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return req, errors.New("missing csv file")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return req, errors.New("unable to open file")
	}
	defer file.Close()

	names, err := batch.ParseCompanies(file)
	if err != nil {
		var validationErr batch.CSVValidationError
		if errors.As(err, &validationErr) {
			return req, validationErr
		}
		return req, errors.New("failed to read csv")
	}
	req.Companies = names
	req.Goal = strings.TrimSpace(c.FormValue("goal"))
	req.Industry = strings.TrimSpace(c.FormValue("industry"))
	if raw := strings.TrimSpace(c.FormValue("limit")); raw != "" {
		if req.Limit, err = strconv.Atoi(raw); err != nil {
			return req, errors.New("limit must be a number")
		}
	}
	return req, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
