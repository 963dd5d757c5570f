package apollo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/octobees/contact-enricher/internal/entity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := New("test-key",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithBackoff(time.Millisecond, 2*time.Millisecond),
	)
	gt.NoError(t, err).Required()
	return c
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	gt.NoError(t, json.NewDecoder(r.Body).Decode(&body)).Required()
	return body
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New("  ")
	gt.Error(t, err).Is(ErrMissingAPIKey)
}

func TestWithTimeout_CopiesCallerClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c, err := New("test-key", WithHTTPClient(shared), WithTimeout(5*time.Second))
	gt.NoError(t, err).Required()

	gt.Value(t, c.http.Timeout).Equal(5 * time.Second)
	gt.Value(t, shared.Timeout).Equal(time.Minute)
	gt.Bool(t, c.http != shared).True()
}

func TestSearchCompany(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/organizations/search")
		gt.Value(t, r.Header.Get("X-Api-Key")).Equal("test-key")
		body := decodeBody(t, r)
		gt.Value(t, body["q_organization_name"]).Equal("CVS Health")
		gt.Value(t, body["per_page"]).Equal(float64(1))

		_, _ = w.Write([]byte(`{"organizations":[{
			"id":"org-1","name":"CVS Health","website_url":"https://www.cvshealth.com/",
			"industry":"hospital & health care","estimated_num_employees":300000,
			"estimated_annual_revenue":357776000000,"city":"Woonsocket","state":"Rhode Island",
			"country":"United States","technologies":["Salesforce"]}]}`))
	})

	company, err := c.SearchCompany(context.Background(), "CVS Health")
	gt.NoError(t, err).Required()
	gt.Value(t, company).NotNil()
	gt.Value(t, company.ProviderID).Equal("org-1")
	gt.Value(t, company.Domain).Equal("www.cvshealth.com")
	gt.Value(t, company.EmployeeCount).Equal(300000)
	gt.Value(t, company.RevenueRange).Equal(entity.RevenueOver200M)
	gt.Value(t, company.Location).Equal("Woonsocket, Rhode Island, United States")
	gt.Value(t, company.FundingStage).Equal("Unknown")
	gt.Array(t, company.Technologies).Length(1)
}

func TestSearchCompany_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"organizations":[]}`))
	})

	company, err := c.SearchCompany(context.Background(), "Nobody Inc")
	gt.NoError(t, err)
	gt.Value(t, company).Nil()
}

func TestSearchByLinkedIn_PrependsScheme(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/people/match")
		body := decodeBody(t, r)
		gt.Value(t, body["linkedin_url"]).Equal("https://linkedin.com/in/karen-lynch")
		_, _ = w.Write([]byte(`{"person":{"id":"p-1","name":"Karen Lynch","title":"CEO",
			"seniority":"c_suite","email":"karen@cvshealth.com","linkedin_url":"http://www.linkedin.com/in/karen-lynch",
			"organization":{"id":"org-1","name":"CVS Health","website_url":"http://cvshealth.com"}}}`))
	})

	person, company, err := c.SearchByLinkedIn(context.Background(), "  linkedin.com/in/karen-lynch ")
	gt.NoError(t, err).Required()
	gt.Value(t, person.Name).Equal("Karen Lynch")
	gt.Value(t, person.Seniority).Equal(entity.SeniorityCSuite)
	gt.Value(t, entity.Deref(person.Email)).Equal("karen@cvshealth.com")
	gt.Value(t, company.Domain).Equal("cvshealth.com")
	gt.Value(t, company.Location).Equal("Unknown")
}

func TestSearchByEmail_NoPerson(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		gt.Value(t, body["email"]).Equal("ghost@example.com")
		_, _ = w.Write([]byte(`{"person":null}`))
	})

	person, company, err := c.SearchByEmail(context.Background(), " ghost@example.com ")
	gt.NoError(t, err)
	gt.Value(t, person).Nil()
	gt.Value(t, company).Nil()
}

func TestSearchByEmail_NamelessPersonIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"person":{"id":"p-2","name":"","email":"x@example.com"}}`))
	})

	person, _, err := c.SearchByEmail(context.Background(), "x@example.com")
	gt.NoError(t, err)
	gt.Value(t, person).Nil()
}

func TestSearchPersonByName(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Path {
		case "/organizations/search":
			_, _ = w.Write([]byte(`{"organizations":[{"id":"org-1","name":"CVS Health"}]}`))
		case "/people/search":
			body := decodeBody(t, r)
			gt.Value(t, body["q_keywords"]).Equal("Karen Lynch")
			gt.Value(t, body["per_page"]).Equal(float64(5))
			_, _ = w.Write([]byte(`{"people":[{"id":"p-9","name":"Someone Else"},{"id":"p-1","name":"Karen Lynch"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	c := newTestClient(t, handler)
	person, company, err := c.SearchPersonByName(context.Background(), "Karen Lynch", "CVS Health", entity.FallbackFirstCandidate)
	gt.NoError(t, err).Required()
	gt.Value(t, person.ProviderID).Equal("p-1")
	gt.Value(t, company.ProviderID).Equal("org-1")
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(2))

	strict := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/organizations/search" {
			_, _ = w.Write([]byte(`{"organizations":[{"id":"org-1","name":"CVS Health"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"people":[{"id":"p-9","name":"Someone Else"}]}`))
	})
	person, _, err = strict.SearchPersonByName(context.Background(), "Karen Lynch", "CVS Health", entity.FallbackStrict)
	gt.NoError(t, err)
	gt.Value(t, person).Nil()
}

func TestSearchPeople_CapsPageSize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		gt.Value(t, body["per_page"]).Equal(float64(100))
		gt.Value(t, body["person_seniorities"]).Equal([]any{"c_suite", "vp"})
		gt.Value(t, body["person_locations"]).Equal([]any{"New York"})
		_, _ = w.Write([]byte(`{"people":[{"id":"p-1","name":"A"},{"id":"p-2","name":""}]}`))
	})

	people, err := c.SearchPeople(context.Background(), SearchPeopleParams{
		CompanyID:   "org-1",
		Titles:      []string{"CEO"},
		Seniorities: []entity.Seniority{entity.SeniorityCSuite, entity.SeniorityVP},
		Locations:   []string{"New York"},
		Limit:       500,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, people).Length(1)
}

func TestSearchPeople_OmitsEmptyFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		_, hasSeniorities := body["person_seniorities"]
		_, hasLocations := body["person_locations"]
		gt.Bool(t, hasSeniorities).False()
		gt.Bool(t, hasLocations).False()
		gt.Value(t, body["per_page"]).Equal(float64(10))
		_, _ = w.Write([]byte(`{"people":[]}`))
	})

	_, err := c.SearchPeople(context.Background(), SearchPeopleParams{CompanyID: "org-1", Titles: []string{"CEO"}})
	gt.NoError(t, err)

	_, err = c.SearchPeople(context.Background(), SearchPeopleParams{})
	gt.Error(t, err)
}

func TestPost_RetriesTransientFailures(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"organizations":[{"id":"org-1","name":"Acme"}]}`))
	})

	company, err := c.SearchCompany(context.Background(), "Acme")
	gt.NoError(t, err).Required()
	gt.Value(t, company.Name).Equal("Acme")
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(3))
}

func TestPost_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.SearchCompany(context.Background(), "Acme")
	gt.Error(t, err)
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(3))

	var apiErr *APIError
	gt.Bool(t, errors.As(err, &apiErr)).True()
	gt.Value(t, apiErr.StatusCode).Equal(http.StatusBadGateway)
}

func TestPost_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"invalid organization name"}`))
	})

	_, err := c.SearchCompany(context.Background(), "Acme")
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("invalid organization name")
	gt.Value(t, atomic.LoadInt32(&calls)).Equal(int32(1))
}

func TestFlexFloat(t *testing.T) {
	var org organization
	gt.NoError(t, json.Unmarshal([]byte(`{"estimated_num_employees":null,"estimated_annual_revenue":"12,500,000"}`), &org))
	gt.Value(t, float64(org.EstimatedNumEmployees)).Equal(0.0)
	gt.Value(t, float64(org.EstimatedAnnualRevenue)).Equal(12500000.0)
}

func TestTargetTitles(t *testing.T) {
	payer := TargetTitles("Health Plan")
	gt.Value(t, payer[:5]).Equal([]string{"CEO", "COO", "CFO", "President", "Founder"})
	gt.Array(t, payer).Has("VP Medicare Advantage")

	gt.Array(t, TargetTitles("Hospital & Health Care")).Has("Chief Nursing Officer")
	gt.Array(t, TargetTitles("Pharmacy benefits")).Has("Chief Pharmacy Officer")
	gt.Array(t, TargetTitles("Biotechnology")).Has("VP Market Access")
	gt.Array(t, TargetTitles("Software")).Has("VP Sales")
}
