package dto

// CompaniesEnrichRequest lists companies to prospect when no CSV file is uploaded.
type CompaniesEnrichRequest struct {
	Companies []string `json:"companies"`
	Goal      string   `json:"goal,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}
