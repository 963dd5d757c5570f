package apollo

import (
	"strings"

	"github.com/octobees/contact-enricher/internal/entity"
)

var baseTitles = []string{"CEO", "COO", "CFO", "President", "Founder"}

var industryTitles = []struct {
	keywords []string
	titles   []string
}{
	{
		keywords: []string{"insurance", "payer", "health plan"},
		titles: []string{
			"CMO", "Chief Medical Officer", "VP Quality", "VP Operations", "VP Medicare",
			"VP Medicare Advantage", "Director Star Ratings", "Director Quality", "VP Member Services",
		},
	},
	{
		keywords: []string{"hospital", "provider", "health system", "clinic", "medical"},
		titles: []string{
			"VP Operations", "VP Care Management", "VP Population Health", "Chief Clinical Officer",
			"Director Care Management", "VP Quality", "Chief Nursing Officer",
		},
	},
	{
		keywords: []string{"pharmacy", "pbm", "drug"},
		titles: []string{
			"VP Pharmacy Operations", "VP Clinical Programs", "Director Adherence",
			"Chief Pharmacy Officer", "VP Pharmacy Services",
		},
	},
	{
		keywords: []string{"pharma", "biotech", "pharmaceutical"},
		titles:   []string{"VP Commercial", "VP Market Access", "Director Patient Services", "VP Marketing"},
	},
}

var defaultTitles = []string{"CTO", "VP Strategy", "VP Innovation", "VP Business Development", "VP Sales"}

// TargetTitles lists decision-maker titles to search for at a company in industry.
func TargetTitles(industry string) []string {
	text := strings.ToLower(industry)
	extra := defaultTitles
	for _, set := range industryTitles {
		if entity.ContainsAny(text, set.keywords) {
			extra = set.titles
			break
		}
	}
	out := make([]string, 0, len(baseTitles)+len(extra))
	out = append(out, baseTitles...)
	return append(out, extra...)
}
