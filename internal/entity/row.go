package entity

import "strings"

// ContactRow is one input record of loosely structured identifiers. Any subset may be empty.
type ContactRow struct {
	Row         int    `json:"row"`
	LinkedInURL string `json:"linkedin_url"`
	Email       string `json:"email"`
	PersonName  string `json:"person_name"`
	CompanyName string `json:"company_name"`
}

// Label is the most human-readable identifier on the row, used in results.
func (r ContactRow) Label() string {
	for _, v := range []string{r.PersonName, r.Email, r.LinkedInURL, r.CompanyName} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Empty reports whether the row carries no identifier at all.
func (r ContactRow) Empty() bool {
	return r.Label() == ""
}
