package entity

import "time"

// ContactPage is a destination record found by a dedup query.
type ContactPage struct {
	ID      string
	Name    string
	Company string
	URL     string
}

// ContactDraft carries everything a create or update may write.
type ContactDraft struct {
	Name            string
	CompanyName     string
	Person          PersonRecord
	Company         *CompanyRecord
	Tier            Tier
	Priority        int
	OutreachContext string
	AINote          string
	EnrichedAt      time.Time
}

// Scored reports whether tier and priority were computed for this draft.
func (d ContactDraft) Scored() bool {
	return d.Tier.Valid() && d.Priority > 0
}
