package entity

import (
	"fmt"
	"strings"
)

// FallbackPolicy decides what a name search returns when no candidate's name matches.
type FallbackPolicy string

const (
	// FallbackFirstCandidate returns the provider's top-ranked candidate.
	FallbackFirstCandidate FallbackPolicy = "first-candidate"
	// FallbackStrict reports not found.
	FallbackStrict FallbackPolicy = "strict"
)

// ParseFallbackPolicy accepts the configured policy names.
func ParseFallbackPolicy(raw string) (FallbackPolicy, error) {
	switch FallbackPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FallbackFirstCandidate:
		return FallbackFirstCandidate, nil
	case FallbackStrict:
		return FallbackStrict, nil
	default:
		return "", fmt.Errorf("unknown fallback policy %q", raw)
	}
}

// PickByName returns the first candidate whose name contains, or is contained in, the
// requested name (case-insensitive). Without such a match the policy decides.
func PickByName(candidates []PersonRecord, name string, policy FallbackPolicy) *PersonRecord {
	if len(candidates) == 0 {
		return nil
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range candidates {
		got := strings.ToLower(strings.TrimSpace(candidates[i].Name))
		if got == "" {
			continue
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return &candidates[i]
		}
	}
	if policy == FallbackStrict {
		return nil
	}
	return &candidates[0]
}
