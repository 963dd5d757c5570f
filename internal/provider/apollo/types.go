package apollo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type organization struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	WebsiteURL             string    `json:"website_url"`
	PrimaryDomain          string    `json:"primary_domain"`
	LinkedInURL            string    `json:"linkedin_url"`
	Industry               string    `json:"industry"`
	EstimatedNumEmployees  flexFloat `json:"estimated_num_employees"`
	EstimatedAnnualRevenue flexFloat `json:"estimated_annual_revenue"`
	AnnualRevenue          flexFloat `json:"annual_revenue"`
	City                   string    `json:"city"`
	State                  string    `json:"state"`
	Country                string    `json:"country"`
	Technologies           []string  `json:"technologies"`
	TechnologyNames        []string  `json:"technology_names"`
	FundingStage           string    `json:"funding_stage"`
	LatestFundingStage     string    `json:"latest_funding_stage"`
}

type phoneNumber struct {
	RawNumber       string `json:"raw_number"`
	SanitizedNumber string `json:"sanitized_number"`
}

type person struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Title        string        `json:"title"`
	Seniority    string        `json:"seniority"`
	Email        *string       `json:"email"`
	Phone        *string       `json:"phone"`
	PhoneNumbers []phoneNumber `json:"phone_numbers"`
	LinkedInURL  string        `json:"linkedin_url"`
	City         string        `json:"city"`
	State        string        `json:"state"`
	Country      string        `json:"country"`
	Organization *organization `json:"organization"`
}

type organizationSearchRequest struct {
	QOrganizationName string `json:"q_organization_name"`
	Page              int    `json:"page"`
	PerPage           int    `json:"per_page"`
}

type organizationSearchResponse struct {
	Organizations []organization `json:"organizations"`
	Accounts      []organization `json:"accounts"`
}

type peopleSearchRequest struct {
	QKeywords         string   `json:"q_keywords,omitempty"`
	OrganizationIDs   []string `json:"organization_ids,omitempty"`
	PersonTitles      []string `json:"person_titles,omitempty"`
	PersonSeniorities []string `json:"person_seniorities,omitempty"`
	PersonLocations   []string `json:"person_locations,omitempty"`
	Page              int      `json:"page"`
	PerPage           int      `json:"per_page"`
}

type peopleSearchResponse struct {
	People []person `json:"people"`
}

type matchRequest struct {
	Email       string `json:"email,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

type matchResponse struct {
	Person *person `json:"person"`
}

// flexFloat accepts numbers, numeric strings and null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
