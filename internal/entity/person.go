package entity

import "strings"

// PersonRecord is a normalised contact returned by the provider.
type PersonRecord struct {
	ProviderID  string    `json:"provider_id,omitempty"`
	Name        string    `json:"name"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Title       string    `json:"title,omitempty"`
	Seniority   Seniority `json:"seniority,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	LinkedInURL *string   `json:"linkedin_url,omitempty"`
	City        *string   `json:"city,omitempty"`
	State       *string   `json:"state,omitempty"`
	Country     *string   `json:"country,omitempty"`
}

// lockedEmailMarker is returned by the provider in place of addresses the account has not unlocked.
const lockedEmailMarker = "email_not_unlocked"

// HasEmail reports whether the record carries a usable email address.
func (p PersonRecord) HasEmail() bool {
	if p.Email == nil {
		return false
	}
	email := strings.TrimSpace(*p.Email)
	return email != "" && strings.Contains(email, "@") && !strings.Contains(email, lockedEmailMarker)
}

// LocationParts returns the non-empty city, state and country values in that order.
func (p PersonRecord) LocationParts() []string {
	var parts []string
	for _, v := range []*string{p.City, p.State, p.Country} {
		if v != nil && strings.TrimSpace(*v) != "" {
			parts = append(parts, strings.TrimSpace(*v))
		}
	}
	return parts
}

// StringPtr returns nil for blank input and a pointer to the trimmed value otherwise.
func StringPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Deref returns the pointed-to string or "".
func Deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
