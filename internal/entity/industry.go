package entity

import "strings"

// IndustryCategory is the closed set of industry options used by the workspace.
type IndustryCategory string

const (
	IndustryInsurance      IndustryCategory = "Insurance"
	IndustryHospitals      IndustryCategory = "Hospital & Health Systems"
	IndustryHealthcareTech IndustryCategory = "Healthcare Tech"
	IndustryPharma         IndustryCategory = "Pharma"
	IndustryBiotech        IndustryCategory = "Biotech"
	IndustryMedicalDevices IndustryCategory = "Medical Devices"
	IndustryDigitalHealth  IndustryCategory = "Digital Health"
	IndustryTelehealth     IndustryCategory = "Telehealth"
	IndustryHealthServices IndustryCategory = "Health Services"
)

// DefaultIndustryCategory is used when no rule matches.
const DefaultIndustryCategory = IndustryHealthcareTech

// IndustryRule maps any of its keywords onto a category.
type IndustryRule struct {
	Keywords []string
	Category IndustryCategory
}

// IndustryRules are evaluated in order; the first rule with a matching keyword wins.
var IndustryRules = []IndustryRule{
	{Keywords: []string{"insurance", "payer", "health plan"}, Category: IndustryInsurance},
	{Keywords: []string{"hospital", "health system", "provider", "clinic", "medical center"}, Category: IndustryHospitals},
	{Keywords: []string{"pharmacy", "pbm", "drug"}, Category: IndustryHealthcareTech},
	{Keywords: []string{"pharma", "pharmaceutical"}, Category: IndustryPharma},
	{Keywords: []string{"biotech", "biotechnology"}, Category: IndustryBiotech},
	{Keywords: []string{"medical device", "device"}, Category: IndustryMedicalDevices},
	{Keywords: []string{"digital health", "health tech"}, Category: IndustryDigitalHealth},
	{Keywords: []string{"telehealth", "telemedicine"}, Category: IndustryTelehealth},
	{Keywords: []string{"health service", "healthcare service"}, Category: IndustryHealthServices},
}

// CategorizeIndustry maps free-text provider industry onto a category.
func CategorizeIndustry(industry string) IndustryCategory {
	text := strings.ToLower(industry)
	for _, rule := range IndustryRules {
		if ContainsAny(text, rule.Keywords) {
			return rule.Category
		}
	}
	return DefaultIndustryCategory
}

// IndustryCategories lists every selectable category, default included.
func IndustryCategories() []string {
	seen := make(map[IndustryCategory]bool)
	var out []string
	for _, rule := range IndustryRules {
		if !seen[rule.Category] {
			seen[rule.Category] = true
			out = append(out, string(rule.Category))
		}
	}
	return out
}

// ContainsAny reports whether text contains at least one keyword.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
