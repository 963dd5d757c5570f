package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/service"
)

// Provider is the subset of the people/company API the resolver drives.
type Provider interface {
	SearchByLinkedIn(ctx context.Context, profileURL string) (*entity.PersonRecord, *entity.CompanyRecord, error)
	SearchByEmail(ctx context.Context, email string) (*entity.PersonRecord, *entity.CompanyRecord, error)
	SearchPersonByName(ctx context.Context, name, company string, policy entity.FallbackPolicy) (*entity.PersonRecord, *entity.CompanyRecord, error)
}

// Resolution is the outcome of resolving one row.
type Resolution struct {
	Person    *entity.PersonRecord
	Company   *entity.CompanyRecord
	MatchedBy entity.MatchPath
	Attempted []entity.MatchPath
	// Err is the provider failure that stopped resolution, if any.
	Err error
}

// Found reports whether a person was resolved.
func (r Resolution) Found() bool {
	return r.Person != nil
}

// Failure converts an unresolved row into a failed result.
func (r Resolution) Failure() entity.EnrichmentResult {
	if r.Err != nil {
		res := entity.Failed(entity.FailureUnexpected, r.Err.Error())
		res.Attempted = r.Attempted
		return res
	}
	res := entity.Failed(entity.FailureNotFound, fmt.Sprintf("Not found in provider (tried: %s)", r.triedList()))
	res.Attempted = r.Attempted
	return res
}

func (r Resolution) triedList() string {
	if len(r.Attempted) == 0 {
		return string(entity.MatchNone)
	}
	parts := make([]string, 0, len(r.Attempted))
	for _, p := range r.Attempted {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, ", ")
}

// Resolver tries progressively weaker identifiers until one yields a person.
type Resolver struct {
	provider   Provider
	normalizer *service.ContactNormalizer
	policy     entity.FallbackPolicy
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFallbackPolicy sets what a name search returns when no candidate name matches.
func WithFallbackPolicy(p entity.FallbackPolicy) Option {
	return func(r *Resolver) {
		if p != "" {
			r.policy = p
		}
	}
}

// WithNormalizer overrides the identifier cleaning rules.
func WithNormalizer(n *service.ContactNormalizer) Option {
	return func(r *Resolver) {
		if n != nil {
			r.normalizer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New builds a resolver over provider.
func New(provider Provider, opts ...Option) *Resolver {
	r := &Resolver{
		provider:   provider,
		normalizer: service.NewContactNormalizer(),
		policy:     entity.FallbackFirstCandidate,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve tries LinkedIn, then email, then name plus company, stopping at the first hit.
// A provider error ends resolution; it is reported on the Resolution, never returned.
func (r *Resolver) Resolve(ctx context.Context, row entity.ContactRow) Resolution {
	var res Resolution

	if profileURL, ok := r.normalizer.NormalizeProfileURL(row.LinkedInURL); ok {
		if r.attempt(ctx, &res, entity.MatchLinkedIn, func() (*entity.PersonRecord, *entity.CompanyRecord, error) {
			return r.provider.SearchByLinkedIn(ctx, profileURL)
		}) {
			return res
		}
	}

	if email, ok := r.normalizer.NormalizeEmail(row.Email); ok {
		if r.attempt(ctx, &res, entity.MatchEmail, func() (*entity.PersonRecord, *entity.CompanyRecord, error) {
			return r.provider.SearchByEmail(ctx, email)
		}) {
			return res
		}
	}

	name := strings.TrimSpace(row.PersonName)
	company := strings.TrimSpace(row.CompanyName)
	if name != "" && company != "" {
		r.attempt(ctx, &res, entity.MatchNameCompany, func() (*entity.PersonRecord, *entity.CompanyRecord, error) {
			return r.provider.SearchPersonByName(ctx, name, company, r.policy)
		})
	}
	return res
}

// attempt runs one lookup and reports whether resolution is finished.
func (r *Resolver) attempt(ctx context.Context, res *Resolution, path entity.MatchPath, lookup func() (*entity.PersonRecord, *entity.CompanyRecord, error)) bool {
	res.Attempted = append(res.Attempted, path)
	person, company, err := lookup()
	if err != nil {
		r.logger.WarnContext(ctx, "provider lookup failed", "path", path, "error", err)
		res.Err = err
		return true
	}
	if person == nil || strings.TrimSpace(person.Name) == "" {
		return false
	}
	cleaned := r.normalizer.CleanPerson(*person)
	res.Person = &cleaned
	res.Company = company
	res.MatchedBy = path
	return true
}
