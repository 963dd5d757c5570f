package entity

import "strings"

// Seniority is the closed set of role levels used to filter people searches.
type Seniority string

const (
	SeniorityUnknown  Seniority = ""
	SeniorityCSuite   Seniority = "c_suite"
	SeniorityVP       Seniority = "vp"
	SeniorityDirector Seniority = "director"
	SeniorityManager  Seniority = "manager"
	SenioritySenior   Seniority = "senior"
)

var seniorityAliases = map[string]Seniority{
	"c_suite":                SeniorityCSuite,
	"c-suite":                SeniorityCSuite,
	"csuite":                 SeniorityCSuite,
	"owner":                  SeniorityCSuite,
	"founder":                SeniorityCSuite,
	"partner":                SeniorityCSuite,
	"vp":                     SeniorityVP,
	"head":                   SeniorityDirector,
	"director":               SeniorityDirector,
	"manager":                SeniorityManager,
	"senior":                 SenioritySenior,
	"entry":                  SenioritySenior,
	"intern":                 SenioritySenior,
	"individual_contributor": SenioritySenior,
}

// ParseSeniority maps provider seniority strings onto the closed set.
func ParseSeniority(raw string) (Seniority, bool) {
	s, ok := seniorityAliases[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// Label is the display name used by the workspace select options.
func (s Seniority) Label() string {
	switch s {
	case SeniorityCSuite:
		return "C-Suite"
	case SeniorityVP:
		return "VP"
	case SeniorityDirector:
		return "Director"
	case SeniorityManager:
		return "Manager"
	case SenioritySenior:
		return "Individual Contributor"
	default:
		return ""
	}
}

// SeniorityLabels lists the workspace select options in rank order.
func SeniorityLabels() []string {
	return []string{"C-Suite", "VP", "Director", "Manager", "Individual Contributor"}
}
