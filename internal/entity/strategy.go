package entity

// TargetingStrategy is the structured filter derived from a free-text outreach goal.
type TargetingStrategy struct {
	Titles      []string    `json:"titles"`
	Seniorities []Seniority `json:"seniorities"`
	Locations   []string    `json:"locations"`
	Explanation string      `json:"explanation"`
}
