package entity

// RevenueRange is a fixed, ordered set of annual revenue buckets.
type RevenueRange string

const (
	RevenueUnknown  RevenueRange = "Unknown"
	RevenueUnder1M  RevenueRange = "<$1M"
	Revenue1To10M   RevenueRange = "$1-10M"
	Revenue10To50M  RevenueRange = "$10-50M"
	Revenue50To200M RevenueRange = "$50-200M"
	RevenueOver200M RevenueRange = "$200M+"
)

const (
	defaultFunding    = "Unknown"
	defaultCompanyLoc = "Unknown"
)

// RevenueRangeFromAmount buckets an estimated annual revenue. Zero or negative means unknown.
func RevenueRangeFromAmount(amount float64) RevenueRange {
	switch {
	case amount <= 0:
		return RevenueUnknown
	case amount < 1_000_000:
		return RevenueUnder1M
	case amount < 10_000_000:
		return Revenue1To10M
	case amount < 50_000_000:
		return Revenue10To50M
	case amount < 200_000_000:
		return Revenue50To200M
	default:
		return RevenueOver200M
	}
}

// CompanyRecord is a normalised organisation returned by the provider.
type CompanyRecord struct {
	ProviderID    string       `json:"provider_id,omitempty"`
	Name          string       `json:"name"`
	Domain        string       `json:"domain,omitempty"`
	LinkedInURL   *string      `json:"linkedin_url,omitempty"`
	Industry      string       `json:"industry,omitempty"`
	EmployeeCount int          `json:"employee_count"`
	RevenueRange  RevenueRange `json:"revenue_range"`
	Location      string       `json:"location"`
	Technologies  []string     `json:"technologies,omitempty"`
	FundingStage  string       `json:"funding_stage"`
}

// DefaultFundingStage is used when the provider omits a funding stage.
func DefaultFundingStage() string { return defaultFunding }

// DefaultCompanyLocation is used when the provider returns no location parts.
func DefaultCompanyLocation() string { return defaultCompanyLoc }
