package apollo

import (
	"strings"

	"github.com/octobees/contact-enricher/internal/entity"
)

func normalizeCompany(raw organization) entity.CompanyRecord {
	revenue := float64(raw.EstimatedAnnualRevenue)
	if revenue <= 0 {
		revenue = float64(raw.AnnualRevenue)
	}
	domain := stripScheme(raw.WebsiteURL)
	if domain == "" {
		domain = strings.TrimSpace(raw.PrimaryDomain)
	}
	technologies := raw.Technologies
	if len(technologies) == 0 {
		technologies = raw.TechnologyNames
	}
	funding := firstNonEmpty(raw.FundingStage, raw.LatestFundingStage, entity.DefaultFundingStage())
	employees := int(raw.EstimatedNumEmployees)
	if employees < 0 {
		employees = 0
	}

	return entity.CompanyRecord{
		ProviderID:    raw.ID,
		Name:          strings.TrimSpace(raw.Name),
		Domain:        domain,
		LinkedInURL:   entity.StringPtr(raw.LinkedInURL),
		Industry:      strings.TrimSpace(raw.Industry),
		EmployeeCount: employees,
		RevenueRange:  entity.RevenueRangeFromAmount(revenue),
		Location:      formatLocation(raw.City, raw.State, raw.Country),
		Technologies:  technologies,
		FundingStage:  funding,
	}
}

// normalizePerson returns nil for nameless records: a person without a name is not a match.
func normalizePerson(raw person) *entity.PersonRecord {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(raw.FirstName) + " " + strings.TrimSpace(raw.LastName))
	}
	if name == "" {
		return nil
	}

	seniority, _ := entity.ParseSeniority(raw.Seniority)

	phone := raw.Phone
	if (phone == nil || strings.TrimSpace(*phone) == "") && len(raw.PhoneNumbers) > 0 {
		phone = entity.StringPtr(firstNonEmpty(raw.PhoneNumbers[0].SanitizedNumber, raw.PhoneNumbers[0].RawNumber))
	}

	return &entity.PersonRecord{
		ProviderID:  raw.ID,
		Name:        name,
		FirstName:   strings.TrimSpace(raw.FirstName),
		LastName:    strings.TrimSpace(raw.LastName),
		Title:       strings.TrimSpace(raw.Title),
		Seniority:   seniority,
		Email:       trimmed(raw.Email),
		Phone:       trimmed(phone),
		LinkedInURL: entity.StringPtr(raw.LinkedInURL),
		City:        entity.StringPtr(raw.City),
		State:       entity.StringPtr(raw.State),
		Country:     entity.StringPtr(raw.Country),
	}
}

func stripScheme(website string) string {
	d := strings.TrimSpace(website)
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	return strings.TrimRight(d, "/")
}

func formatLocation(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return entity.DefaultCompanyLocation()
	}
	return strings.Join(out, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	return entity.StringPtr(*v)
}
