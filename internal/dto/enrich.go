package dto

// ContactEnrichRequest is a single contact row submitted as JSON.
type ContactEnrichRequest struct {
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Email       string `json:"email,omitempty"`
	PersonName  string `json:"person_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Goal        string `json:"goal,omitempty"`
}
