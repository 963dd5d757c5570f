package apollo

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/octobees/contact-enricher/internal/entity"
)

const (
	maxPerPage          = 100
	defaultPeopleLimit  = 10
	nameSearchPageSize  = 5
	companySearchResult = 1
)

// SearchPeopleParams filters a people search at one company.
type SearchPeopleParams struct {
	CompanyID   string
	Titles      []string
	Seniorities []entity.Seniority
	Locations   []string
	Limit       int
}

// SearchCompany returns the best organisation match for name, or nil.
func (c *Client) SearchCompany(ctx context.Context, name string) (*entity.CompanyRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var resp organizationSearchResponse
	req := organizationSearchRequest{QOrganizationName: name, Page: 1, PerPage: companySearchResult}
	if err := c.post(ctx, "/organizations/search", req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to search company", goerr.V("company", name))
	}
	orgs := resp.Organizations
	if len(orgs) == 0 {
		orgs = resp.Accounts
	}
	if len(orgs) == 0 {
		return nil, nil
	}
	company := normalizeCompany(orgs[0])
	return &company, nil
}

// SearchPersonByName resolves company, then picks a person at it whose name matches.
func (c *Client) SearchPersonByName(ctx context.Context, name, company string, policy entity.FallbackPolicy) (*entity.PersonRecord, *entity.CompanyRecord, error) {
	org, err := c.SearchCompany(ctx, company)
	if err != nil || org == nil {
		return nil, nil, err
	}

	var resp peopleSearchResponse
	req := peopleSearchRequest{
		QKeywords:       strings.TrimSpace(name),
		OrganizationIDs: []string{org.ProviderID},
		Page:            1,
		PerPage:         nameSearchPageSize,
	}
	if err := c.post(ctx, "/people/search", req, &resp); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to search person by name", goerr.V("name", name), goerr.V("company", company))
	}

	candidates := normalizePeople(resp.People)
	picked := entity.PickByName(candidates, name, policy)
	if picked == nil {
		return nil, nil, nil
	}
	return picked, org, nil
}

// SearchByEmail is an exact match on email address.
func (c *Client) SearchByEmail(ctx context.Context, email string) (*entity.PersonRecord, *entity.CompanyRecord, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil, nil
	}
	return c.match(ctx, matchRequest{Email: email})
}

// SearchByLinkedIn is an exact match on profile URL. A missing scheme is filled with https://.
func (c *Client) SearchByLinkedIn(ctx context.Context, profileURL string) (*entity.PersonRecord, *entity.CompanyRecord, error) {
	profileURL = strings.TrimSpace(profileURL)
	if profileURL == "" {
		return nil, nil, nil
	}
	if !strings.HasPrefix(strings.ToLower(profileURL), "http") {
		profileURL = "https://" + profileURL
	}
	return c.match(ctx, matchRequest{LinkedInURL: profileURL})
}

// SearchPeople lists people at a company filtered by titles, seniorities and locations.
func (c *Client) SearchPeople(ctx context.Context, params SearchPeopleParams) ([]entity.PersonRecord, error) {
	if strings.TrimSpace(params.CompanyID) == "" {
		return nil, goerr.New("company id is required for people search")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPeopleLimit
	}
	if limit > maxPerPage {
		limit = maxPerPage
	}

	req := peopleSearchRequest{
		OrganizationIDs: []string{params.CompanyID},
		PersonTitles:    params.Titles,
		PersonLocations: params.Locations,
		Page:            1,
		PerPage:         limit,
	}
	for _, s := range params.Seniorities {
		if s != entity.SeniorityUnknown {
			req.PersonSeniorities = append(req.PersonSeniorities, string(s))
		}
	}

	var resp peopleSearchResponse
	if err := c.post(ctx, "/people/search", req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to search people", goerr.V("company_id", params.CompanyID))
	}
	return normalizePeople(resp.People), nil
}

func (c *Client) match(ctx context.Context, req matchRequest) (*entity.PersonRecord, *entity.CompanyRecord, error) {
	var resp matchResponse
	if err := c.post(ctx, "/people/match", req, &resp); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to match person")
	}
	if resp.Person == nil {
		return nil, nil, nil
	}
	p := normalizePerson(*resp.Person)
	if p == nil {
		return nil, nil, nil
	}
	var company *entity.CompanyRecord
	if resp.Person.Organization != nil {
		org := normalizeCompany(*resp.Person.Organization)
		company = &org
	}
	return p, company, nil
}

func normalizePeople(raw []person) []entity.PersonRecord {
	out := make([]entity.PersonRecord, 0, len(raw))
	for _, r := range raw {
		if p := normalizePerson(r); p != nil {
			out = append(out, *p)
		}
	}
	return out
}
