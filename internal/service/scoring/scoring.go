package scoring

import (
	"math"
	"strings"

	"github.com/octobees/contact-enricher/internal/entity"
)

const (
	categoryBase    = "base"
	categorySize    = "company_size"
	categoryRevenue = "revenue"
	categoryEmails  = "contact_emails"
	categoryTier    = "tier_boost"

	baseScore   = 5.0
	minPriority = 1
	maxPriority = 10
)

// tierKeywords are checked in tier order; the first set with any match wins.
var tierKeywords = []struct {
	tier     entity.Tier
	keywords []string
}{
	{entity.Tier1, []string{"imo", "agent", "broker", "medicare advisor", "insurance marketing"}},
	{entity.Tier2, []string{"medicare advantage", "health plan", "insurance", "payer", "medicaid"}},
	{entity.Tier3, []string{"aco", "mso", "provider", "medical group", "health system", "hospital", "clinic"}},
	{entity.Tier4, []string{"pharma", "pharmaceutical", "biotech", "drug"}},
}

// DefaultTier is assigned when no keyword set matches.
const DefaultTier = entity.Tier3

// ScoreResult reports the tier, the clamped priority and the per-category contributions.
type ScoreResult struct {
	Tier      entity.Tier
	Priority  int
	Raw       float64
	Breakdown map[string]float64
}

// AssignTier classifies a company from its industry and name.
func AssignTier(company entity.CompanyRecord) entity.Tier {
	text := strings.ToLower(company.Industry + " " + company.Name)
	for _, set := range tierKeywords {
		if entity.ContainsAny(text, set.keywords) {
			return set.tier
		}
	}
	return DefaultTier
}

// PriorityScore returns the 1-10 priority for a company and its contacts.
func PriorityScore(company entity.CompanyRecord, contacts []entity.PersonRecord) int {
	return ComputeScore(company, contacts).Priority
}

// ComputeScore assigns the tier and evaluates every priority contribution.
func ComputeScore(company entity.CompanyRecord, contacts []entity.PersonRecord) ScoreResult {
	tier := AssignTier(company)
	breakdown := map[string]float64{
		categoryBase:    baseScore,
		categorySize:    scoreSize(company.EmployeeCount),
		categoryRevenue: scoreRevenue(company.RevenueRange),
		categoryEmails:  scoreEmails(contacts),
		categoryTier:    scoreTier(tier),
	}

	raw := 0.0
	for _, value := range breakdown {
		raw += value
	}

	return ScoreResult{
		Tier:      tier,
		Priority:  clamp(int(math.Round(raw))),
		Raw:       raw,
		Breakdown: breakdown,
	}
}

// scoreSize treats zero as unknown, so only known small companies are penalised.
func scoreSize(employees int) float64 {
	switch {
	case employees > 5000:
		return 2
	case employees > 1000:
		return 1.5
	case employees > 200:
		return 1
	case employees > 50:
		return 0.5
	case employees > 0 && employees < 10:
		return -0.5
	default:
		return 0
	}
}

func scoreRevenue(revenue entity.RevenueRange) float64 {
	switch revenue {
	case entity.RevenueOver200M:
		return 2
	case entity.Revenue50To200M:
		return 1.5
	case entity.Revenue10To50M:
		return 1
	case entity.Revenue1To10M:
		return 0.5
	default:
		return 0
	}
}

func scoreEmails(contacts []entity.PersonRecord) float64 {
	found := countEmails(contacts)
	switch {
	case found >= 3:
		return 2
	case found >= 2:
		return 1.5
	case found >= 1:
		return 1
	default:
		return -0.5
	}
}

func scoreTier(tier entity.Tier) float64 {
	switch tier {
	case entity.Tier1:
		return 2
	case entity.Tier2:
		return 1
	default:
		return 0
	}
}

func countEmails(contacts []entity.PersonRecord) int {
	count := 0
	for _, c := range contacts {
		if c.HasEmail() {
			count++
		}
	}
	return count
}

func clamp(score int) int {
	if score < minPriority {
		return minPriority
	}
	if score > maxPriority {
		return maxPriority
	}
	return score
}
