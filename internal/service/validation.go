package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/contact-enricher/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix      = "utm_"
	defaultPhoneRegion  = "US"
	ProfileDomainMarker = "linkedin.com"
)

// ContactNormalizer cleans identifiers supplied by callers and contact channels returned by the provider.
type ContactNormalizer struct {
	DefaultRegion  string
	profileDomains []string
}

// ContactNormalizerOption configures optional behaviour.
type ContactNormalizerOption func(*ContactNormalizer)

// WithDefaultRegion sets the region used to parse phone numbers without a country code.
func WithDefaultRegion(region string) ContactNormalizerOption {
	return func(n *ContactNormalizer) {
		if r := strings.ToUpper(strings.TrimSpace(region)); r != "" {
			n.DefaultRegion = r
		}
	}
}

// WithProfileDomains overrides the markers accepted as professional-network profiles. Blank
// entries are ignored; an empty list keeps linkedin.com.
func WithProfileDomains(domains ...string) ContactNormalizerOption {
	return func(n *ContactNormalizer) {
		cleaned := make([]string, 0, len(domains))
		for _, d := range domains {
			if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
				cleaned = append(cleaned, d)
			}
		}
		if len(cleaned) > 0 {
			n.profileDomains = cleaned
		}
	}
}

// NewContactNormalizer builds a normalizer with US phone parsing and linkedin.com profiles.
func NewContactNormalizer(opts ...ContactNormalizerOption) *ContactNormalizer {
	n := &ContactNormalizer{
		DefaultRegion:  defaultPhoneRegion,
		profileDomains: []string{ProfileDomainMarker},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// HasProfileMarker reports whether raw mentions a professional-network domain.
func (n *ContactNormalizer) HasProfileMarker(raw string) bool {
	lower := strings.ToLower(raw)
	for _, d := range n.profileDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// IsWritableProfileURL reports whether a URL may be written to the workspace LinkedIn field:
// it must carry a scheme and the professional-network marker.
func (n *ContactNormalizer) IsWritableProfileURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	return strings.HasPrefix(strings.ToLower(raw), "http") && n.HasProfileMarker(raw)
}

// NormalizeProfileURL trims raw and prepends https:// when no scheme is present. The rest of the
// URL is posted to the provider as given. ok is false when raw lacks the profile marker.
func (n *ContactNormalizer) NormalizeProfileURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !n.HasProfileMarker(raw) {
		return "", false
	}
	if !strings.HasPrefix(strings.ToLower(raw), "http") {
		raw = "https://" + raw
	}
	return raw, true
}

// NormalizeEmail returns the trimmed, lowercased address. ok is false when no @ is present.
func (n *ContactNormalizer) NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !strings.Contains(email, "@") {
		return "", false
	}
	return email, true
}

// IsDeliverableEmail applies the stricter syntax check used before writing emails.
func (n *ContactNormalizer) IsDeliverableEmail(raw string) bool {
	email, ok := n.NormalizeEmail(raw)
	if !ok || !emailPattern.MatchString(email) {
		return false
	}
	domain := strings.SplitN(email, "@", 2)[1]
	if !isDomainValid(domain) {
		return false
	}
	ascii, err := idnaProfile.ToASCII(domain)
	return err == nil && ascii != ""
}

// NormalizePhone formats raw as E.164. Numbers that cannot be parsed are kept trimmed as-is.
func (n *ContactNormalizer) NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if normalized := normalizePhone(raw, n.DefaultRegion); normalized != "" {
		return normalized
	}
	return raw
}

// CleanPerson normalises the contact channels of a provider record.
func (n *ContactNormalizer) CleanPerson(p entity.PersonRecord) entity.PersonRecord {
	p.Name = strings.TrimSpace(p.Name)
	p.Title = strings.TrimSpace(p.Title)
	if p.Email != nil {
		if email, ok := n.NormalizeEmail(*p.Email); ok {
			p.Email = &email
		} else {
			p.Email = nil
		}
	}
	if p.Phone != nil {
		p.Phone = entity.StringPtr(n.NormalizePhone(*p.Phone))
	}
	if p.LinkedInURL != nil {
		p.LinkedInURL = entity.StringPtr(*p.LinkedInURL)
	}
	p.City = trimPtr(p.City)
	p.State = trimPtr(p.State)
	p.Country = trimPtr(p.Country)
	return p
}

// SanitizeWebsite turns a bare domain into an https URL.
func SanitizeWebsite(raw string) (string, error) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", err
	}
	stripTracking(u)
	return u.String(), nil
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	return entity.StringPtr(*v)
}
