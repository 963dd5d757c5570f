package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/middleware"
	"github.com/octobees/contact-enricher/internal/provider/apollo"
	"github.com/octobees/contact-enricher/internal/service/batch"
	"github.com/octobees/contact-enricher/internal/service/resolver"
	"github.com/octobees/contact-enricher/internal/service/session"
	"github.com/octobees/contact-enricher/internal/service/upsert"
	"github.com/octobees/contact-enricher/internal/workspace/notion"
)

var testUserID = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")

type stubSessions struct {
	session *session.Session
	err     error
}

func (s *stubSessions) ForUser(_ context.Context, userID uuid.UUID) (*session.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if userID != testUserID {
		return nil, errors.New("unexpected user")
	}
	return s.session, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, row entity.ContactRow) resolver.Resolution {
	if row.Email == "" && row.PersonName == "" && row.LinkedInURL == "" {
		return resolver.Resolution{}
	}
	if row.Email == "" {
		return resolver.Resolution{Attempted: []entity.MatchPath{entity.MatchNameCompany}}
	}
	return resolver.Resolution{
		Person:    &entity.PersonRecord{Name: "Karen Lynch", Email: entity.StringPtr(row.Email)},
		MatchedBy: entity.MatchEmail,
		Attempted: []entity.MatchPath{entity.MatchEmail},
	}
}

type stubUpserter struct{}

func (stubUpserter) Upsert(_ context.Context, c upsert.Candidate) entity.EnrichmentResult {
	return entity.Succeeded(entity.ActionCreated, c.MatchedBy, "Created via "+string(c.MatchedBy))
}

type stubDirectory struct{}

func (stubDirectory) SearchCompany(_ context.Context, name string) (*entity.CompanyRecord, error) {
	if name != "CVS Health" {
		return nil, nil
	}
	return &entity.CompanyRecord{Name: name, Industry: "health care"}, nil
}

func (stubDirectory) SearchPeople(_ context.Context, p apollo.SearchPeopleParams) ([]entity.PersonRecord, error) {
	return []entity.PersonRecord{{Name: "Karen Lynch", Title: "CEO"}}, nil
}

type stubIndex struct{}

func (stubIndex) CompanyExists(context.Context, string) (bool, error) { return false, nil }

type stubSchema struct {
	report notion.SchemaReport
	setup  notion.SetupResult
	err    error
}

func (s *stubSchema) ValidateSchema(context.Context) (notion.SchemaReport, error) {
	return s.report, s.err
}

func (s *stubSchema) SetupSchema(_ context.Context, includeOptional bool) (notion.SetupResult, error) {
	return s.setup, s.err
}

type stubStrategist struct {
	strategy entity.TargetingStrategy
	err      error
}

func (s *stubStrategist) Generate(context.Context, string, string) (entity.TargetingStrategy, error) {
	return s.strategy, s.err
}

func (s *stubStrategist) Model() string { return "test-model" }

func newTestSession() *session.Session {
	return &session.Session{
		UserID:    testUserID,
		Runner:    batch.New(stubResolver{}, stubUpserter{}, batch.WithCompanyFlow(stubDirectory{}, stubIndex{})),
		Schema:    &stubSchema{},
		PeopleCap: 5,
	}
}

func newJSONContext(e *echo.Echo, method, path string, payload any) (echo.Context, *httptest.ResponseRecorder) {
	var body []byte
	switch v := payload.(type) {
	case nil:
	case string:
		body = []byte(v)
	default:
		body, _ = json.Marshal(v)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newUploadContext(t *testing.T, e *echo.Echo, path, csvBody string, fields map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "rows.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(csvBody)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authenticate(c echo.Context) {
	c.Set(middleware.ContextKeyUserID, testUserID.String())
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()
	var raw struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return APIResponse{Status: raw.Status, Message: raw.Message}
}

type noteStrategist struct {
	err error
}

func (s *noteStrategist) Generate(context.Context, string, string) (entity.TargetingStrategy, error) {
	return entity.TargetingStrategy{}, s.err
}

func (s *noteStrategist) OutreachNote(context.Context, entity.PersonRecord, *entity.CompanyRecord, string) (string, error) {
	return "", s.err
}
