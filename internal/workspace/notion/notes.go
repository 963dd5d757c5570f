package notion

import (
	"strconv"
	"strings"

	"github.com/octobees/contact-enricher/internal/entity"
)

const (
	notesTimeLayout   = "2006-01-02 15:04"
	linkedInMissing   = "Not available - use email or phone for outreach"
	notesBullet       = "  • "
	notesSectionBreak = ""
)

// BuildNotes renders the free-text notes block attached to every written contact.
// profileURL is the LinkedIn URL that will be written, or empty when it was rejected.
func BuildNotes(d entity.ContactDraft, profileURL string) string {
	var lines []string
	section := func(header string, body ...string) {
		lines = append(lines, header)
		lines = append(lines, body...)
		lines = append(lines, notesSectionBreak)
	}

	if d.AINote != "" {
		section("🤖 AI-Powered Outreach Strategy:", "  "+d.AINote)
	}
	if d.OutreachContext != "" {
		section("💡 Outreach Context:", "  "+d.OutreachContext)
	}
	lines = append(lines, "🎯 Enriched on "+d.EnrichedAt.Format(notesTimeLayout), notesSectionBreak)

	if d.Tier.Valid() || d.Priority > 0 {
		var body []string
		if d.Tier.Valid() {
			body = append(body, notesBullet+"Tier: "+d.Tier.Label())
		}
		if d.Priority > 0 {
			body = append(body, notesBullet+"Priority: "+strconv.Itoa(d.Priority)+"/10")
		}
		section("📊 Scoring:", body...)
	}

	p := d.Person
	lines = append(lines, "📧 Contact Info:")
	if p.HasEmail() {
		lines = append(lines, notesBullet+"Email: "+entity.Deref(p.Email))
	}
	if phone := entity.Deref(p.Phone); phone != "" {
		lines = append(lines, notesBullet+"Phone: "+phone)
	}
	if profileURL != "" {
		lines = append(lines, notesBullet+"LinkedIn: "+profileURL)
	} else {
		lines = append(lines, notesBullet+"LinkedIn: "+linkedInMissing)
	}
	if p.Title != "" {
		lines = append(lines, notesBullet+"Title: "+p.Title)
	}
	if level := p.Seniority.Label(); level != "" {
		lines = append(lines, notesBullet+"Level: "+level)
	}
	if loc := p.LocationParts(); len(loc) > 0 {
		lines = append(lines, notesBullet+"Location: "+strings.Join(loc, ", "))
	}

	c := d.Company
	if c != nil {
		lines = append(lines, notesSectionBreak, "🏢 Company Info:")
		if c.Domain != "" {
			lines = append(lines, notesBullet+"Website: https://"+c.Domain)
		}
		if li := entity.Deref(c.LinkedInURL); li != "" {
			lines = append(lines, notesBullet+"Company LinkedIn: "+li)
		}
		if c.EmployeeCount > 0 {
			lines = append(lines, notesBullet+"Size: "+groupThousands(c.EmployeeCount)+" employees")
		}
		if c.Location != "" {
			lines = append(lines, notesBullet+"Location: "+c.Location)
		}
		if c.RevenueRange != "" {
			lines = append(lines, notesBullet+"Revenue: "+string(c.RevenueRange))
		}
		if c.Industry != "" {
			lines = append(lines, notesBullet+"Industry: "+c.Industry)
		}
	}

	if p.ProviderID != "" || (c != nil && c.ProviderID != "") {
		ids := "Apollo IDs: " + orNA(p.ProviderID) + " (contact)"
		if c != nil && c.ProviderID != "" {
			ids += ", " + c.ProviderID + " (company)"
		}
		lines = append(lines, notesSectionBreak, ids)
	}
	return strings.Join(lines, "\n")
}

func groupThousands(n int) string {
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
