package entity

import "time"

// Status tags the outcome of enriching a single row.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Action records which write the upsert performed.
type Action string

const (
	ActionNone    Action = ""
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// MatchPath identifies the identifier class that resolved a contact.
type MatchPath string

const (
	MatchNone        MatchPath = "none"
	MatchLinkedIn    MatchPath = "linkedin"
	MatchEmail       MatchPath = "email"
	MatchNameCompany MatchPath = "name_company"
	MatchCompany     MatchPath = "company"
)

// FailureKind classifies failed outcomes.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureNotFound   FailureKind = "not_found_upstream"
	FailureWrite      FailureKind = "write_failure"
	FailureUnexpected FailureKind = "unexpected"
)

// EnrichmentResult is the tagged outcome of processing one row or company.
type EnrichmentResult struct {
	Row       int            `json:"row"`
	Input     string         `json:"input"`
	Status    Status         `json:"status"`
	Action    Action         `json:"action,omitempty"`
	MatchedBy MatchPath      `json:"matched_by,omitempty"`
	Attempted []MatchPath    `json:"attempted,omitempty"`
	Failure   FailureKind    `json:"failure,omitempty"`
	Message   string         `json:"message"`
	PageID    string         `json:"page_id,omitempty"`
	Person    *PersonRecord  `json:"person,omitempty"`
	Company   *CompanyRecord `json:"company,omitempty"`
	Tier      string         `json:"tier,omitempty"`
	Priority  int            `json:"priority,omitempty"`
	Contacts  *ContactCounts `json:"contacts,omitempty"`
	At        time.Time      `json:"at"`
}

// ContactCounts summarises per-contact outcomes inside a company result.
type ContactCounts struct {
	Found   int `json:"found"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Succeeded builds a success result.
func Succeeded(action Action, path MatchPath, message string) EnrichmentResult {
	return EnrichmentResult{Status: StatusSuccess, Action: action, MatchedBy: path, Message: message, At: time.Now().UTC()}
}

// Skipped builds a skipped result.
func Skipped(path MatchPath, message string) EnrichmentResult {
	return EnrichmentResult{Status: StatusSkipped, MatchedBy: path, Message: message, At: time.Now().UTC()}
}

// Failed builds a failed result.
func Failed(kind FailureKind, message string) EnrichmentResult {
	return EnrichmentResult{Status: StatusFailed, Failure: kind, Message: message, At: time.Now().UTC()}
}

// Summary counts outcomes across a batch.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Add folds one result into the summary.
func (s *Summary) Add(result EnrichmentResult) {
	s.Total++
	switch result.Status {
	case StatusSuccess:
		s.Success++
	case StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}
