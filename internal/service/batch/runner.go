package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/provider/apollo"
	"github.com/octobees/contact-enricher/internal/service/resolver"
	"github.com/octobees/contact-enricher/internal/service/scoring"
	"github.com/octobees/contact-enricher/internal/service/upsert"
)

// ContactResolver resolves one row into a person.
type ContactResolver interface {
	Resolve(ctx context.Context, row entity.ContactRow) resolver.Resolution
}

// Upserter performs the dedup check and the write.
type Upserter interface {
	Upsert(ctx context.Context, c upsert.Candidate) entity.EnrichmentResult
}

// CompanyDirectory is the provider surface used by the company flow.
type CompanyDirectory interface {
	SearchCompany(ctx context.Context, name string) (*entity.CompanyRecord, error)
	SearchPeople(ctx context.Context, params apollo.SearchPeopleParams) ([]entity.PersonRecord, error)
}

// CompanyIndex answers whether the workspace already holds pages for a company.
type CompanyIndex interface {
	CompanyExists(ctx context.Context, company string) (bool, error)
}

// Strategist generates targeting filters and outreach notes.
type Strategist interface {
	Generate(ctx context.Context, goal, industry string) (entity.TargetingStrategy, error)
	OutreachNote(ctx context.Context, person entity.PersonRecord, company *entity.CompanyRecord, goal string) (string, error)
}

// ProgressFunc is called after each row with its 1-based position. Calls are concurrent when
// more than one worker is configured.
type ProgressFunc func(position, total int, r entity.EnrichmentResult)

// Runner drives contact and company batches over one set of credentials.
type Runner struct {
	resolver  ContactResolver
	upserter  Upserter
	directory CompanyDirectory
	index     CompanyIndex
	strategy  Strategist
	titles    func(industry string) []string
	workers   int
	progress  ProgressFunc
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithCompanyFlow enables ProcessCompanies.
func WithCompanyFlow(directory CompanyDirectory, index CompanyIndex) Option {
	return func(r *Runner) {
		r.directory = directory
		r.index = index
	}
}

// WithStrategist enables goal-driven targeting and AI notes.
func WithStrategist(s Strategist) Option {
	return func(r *Runner) { r.strategy = s }
}

// WithWorkers processes up to n rows concurrently.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithProgress registers a per-row callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New builds a runner for the contact flow.
func New(res ContactResolver, up Upserter, opts ...Option) *Runner {
	r := &Runner{
		resolver: res,
		upserter: up,
		titles:   apollo.TargetTitles,
		workers:  1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ContactOptions tunes the contact flow.
type ContactOptions struct {
	// Goal, when set, is written as outreach context and drives an AI note.
	Goal string
}

// ProcessContact resolves and upserts one row. It never returns an error.
func (r *Runner) ProcessContact(ctx context.Context, row entity.ContactRow, opts ContactOptions) entity.EnrichmentResult {
	res := r.resolver.Resolve(ctx, row)
	if !res.Found() {
		out := res.Failure()
		out.Row = row.Row
		out.Input = row.Label()
		return out
	}

	draft := entity.ContactDraft{
		Name:            firstNonEmpty(res.Person.Name, row.PersonName, row.Email, row.LinkedInURL),
		CompanyName:     row.CompanyName,
		Person:          *res.Person,
		Company:         res.Company,
		OutreachContext: strings.TrimSpace(opts.Goal),
	}
	if res.Company != nil && strings.TrimSpace(res.Company.Name) != "" {
		draft.CompanyName = res.Company.Name
	}
	draft.AINote = r.note(ctx, draft)

	out := r.upserter.Upsert(ctx, upsert.Candidate{Draft: draft, MatchedBy: res.MatchedBy})
	out.Row = row.Row
	out.Attempted = res.Attempted
	return out
}

// ProcessContacts runs the contact flow over rows in file order.
func (r *Runner) ProcessContacts(ctx context.Context, bc *BatchContext, rows []entity.ContactRow, opts ContactOptions) Report {
	r.run(ctx, bc, len(rows), func(ctx context.Context, i int) entity.EnrichmentResult {
		return r.ProcessContact(ctx, rows[i], opts)
	}, func(i int) entity.EnrichmentResult {
		out := entity.Failed(entity.FailureUnexpected, "batch cancelled")
		out.Row = rows[i].Row
		out.Input = rows[i].Label()
		return out
	})
	rep := bc.report()
	r.logger.InfoContext(ctx, "contact batch finished",
		slog.String("batch_id", bc.ID.String()),
		slog.Int("total", rep.Summary.Total),
		slog.Int("success", rep.Summary.Success),
		slog.Int("skipped", rep.Summary.Skipped),
		slog.Int("failed", rep.Summary.Failed),
	)
	return rep
}

// CompanyOptions tunes the company flow.
type CompanyOptions struct {
	Goal     string
	Industry string
	Limit    int
}

// Plan is the search filter applied to every company in a batch.
type Plan struct {
	Strategy *entity.TargetingStrategy
	Goal     string
	Limit    int
}

// PlanCompanies generates a strategy when a goal is set. Without an explicit industry the
// first company's provider industry is used as context.
func (r *Runner) PlanCompanies(ctx context.Context, names []string, opts CompanyOptions) (Plan, error) {
	plan := Plan{Goal: strings.TrimSpace(opts.Goal), Limit: opts.Limit}
	if plan.Goal == "" || r.strategy == nil {
		return plan, nil
	}
	industry := strings.TrimSpace(opts.Industry)
	if industry == "" && len(names) > 0 && r.directory != nil {
		if company, err := r.directory.SearchCompany(ctx, names[0]); err == nil && company != nil {
			industry = company.Industry
		}
	}
	s, err := r.strategy.Generate(ctx, plan.Goal, industry)
	if err != nil {
		return Plan{}, err
	}
	plan.Strategy = &s
	return plan, nil
}

// ProcessCompany finds target people at one company, scores them and upserts each.
func (r *Runner) ProcessCompany(ctx context.Context, row int, name string, plan Plan) entity.EnrichmentResult {
	fail := func(kind entity.FailureKind, msg string) entity.EnrichmentResult {
		out := entity.Failed(kind, msg)
		out.Row, out.Input, out.MatchedBy = row, name, entity.MatchCompany
		return out
	}
	if r.directory == nil {
		return fail(entity.FailureUnexpected, "company flow is not configured")
	}

	if r.index != nil {
		exists, err := r.index.CompanyExists(ctx, name)
		if err != nil {
			return fail(entity.FailureUnexpected, err.Error())
		}
		if exists {
			out := entity.Skipped(entity.MatchCompany, "Already exists (found via company)")
			out.Row, out.Input = row, name
			return out
		}
	}

	company, err := r.directory.SearchCompany(ctx, name)
	if err != nil {
		return fail(entity.FailureUnexpected, err.Error())
	}
	if company == nil {
		out := fail(entity.FailureNotFound, "Not found in provider (tried: company)")
		out.Attempted = []entity.MatchPath{entity.MatchCompany}
		return out
	}

	params := apollo.SearchPeopleParams{CompanyID: company.ProviderID, Limit: plan.Limit}
	if plan.Strategy != nil {
		params.Titles = plan.Strategy.Titles
		params.Seniorities = plan.Strategy.Seniorities
		params.Locations = plan.Strategy.Locations
	}
	if len(params.Titles) == 0 {
		params.Titles = r.titles(company.Industry)
	}
	people, err := r.directory.SearchPeople(ctx, params)
	if err != nil {
		return fail(entity.FailureUnexpected, err.Error())
	}

	score := scoring.ComputeScore(*company, people)
	counts := &entity.ContactCounts{Found: len(people)}
	for _, p := range people {
		draft := entity.ContactDraft{
			Name:            p.Name,
			CompanyName:     company.Name,
			Person:          p,
			Company:         company,
			Tier:            score.Tier,
			Priority:        score.Priority,
			OutreachContext: plan.Goal,
		}
		draft.AINote = r.note(ctx, draft)
		res := r.upserter.Upsert(ctx, upsert.Candidate{Draft: draft, MatchedBy: entity.MatchCompany})
		switch {
		case res.Status == entity.StatusSkipped:
			counts.Skipped++
		case res.Status == entity.StatusFailed:
			counts.Failed++
		case res.Action == entity.ActionUpdated:
			counts.Updated++
		default:
			counts.Created++
		}
	}

	msg := fmt.Sprintf("Found %d, Added %d, Skipped %d", counts.Found, counts.Created+counts.Updated, counts.Skipped)
	var out entity.EnrichmentResult
	if counts.Failed > 0 && counts.Created+counts.Updated == 0 {
		out = entity.Failed(entity.FailureWrite, fmt.Sprintf("%s, Failed %d", msg, counts.Failed))
		out.MatchedBy = entity.MatchCompany
	} else {
		out = entity.Succeeded(entity.ActionNone, entity.MatchCompany, msg)
	}
	out.Row, out.Input = row, name
	out.Company = company
	out.Tier = score.Tier.Label()
	out.Priority = score.Priority
	out.Contacts = counts
	return out
}

// ProcessCompanies plans once and then runs the company flow in file order.
func (r *Runner) ProcessCompanies(ctx context.Context, bc *BatchContext, names []string, opts CompanyOptions) (Report, error) {
	plan, err := r.PlanCompanies(ctx, names, opts)
	if err != nil {
		return Report{}, err
	}

	r.run(ctx, bc, len(names), func(ctx context.Context, i int) entity.EnrichmentResult {
		return r.ProcessCompany(ctx, i+1, names[i], plan)
	}, func(i int) entity.EnrichmentResult {
		out := entity.Failed(entity.FailureUnexpected, "batch cancelled")
		out.Row, out.Input, out.MatchedBy = i+1, names[i], entity.MatchCompany
		return out
	})
	rep := bc.report()
	rep.Strategy = plan.Strategy
	r.logger.InfoContext(ctx, "company batch finished",
		slog.String("batch_id", bc.ID.String()),
		slog.Int("total", rep.Summary.Total),
		slog.Int("success", rep.Summary.Success),
		slog.Int("skipped", rep.Summary.Skipped),
		slog.Int("failed", rep.Summary.Failed),
	)
	return rep, nil
}

// run processes total items. A single worker handles rows strictly in order with the throttle
// between them; more workers dispatch through an errgroup, pacing each dispatch.
func (r *Runner) run(ctx context.Context, bc *BatchContext, total int, process func(context.Context, int) entity.EnrichmentResult, cancelled func(int) entity.EnrichmentResult) {
	record := func(i int, res entity.EnrichmentResult) {
		bc.Record(i, res)
		if r.progress != nil {
			r.progress(i+1, total, res)
		}
	}
	abortFrom := func(start int) {
		for j := start; j < total; j++ {
			record(j, cancelled(j))
		}
	}

	if r.workers <= 1 {
		for i := 0; i < total; i++ {
			if i > 0 {
				if err := bc.Throttle.Wait(ctx); err != nil {
					abortFrom(i)
					return
				}
			}
			if ctx.Err() != nil {
				abortFrom(i)
				return
			}
			record(i, process(ctx, i))
		}
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := 0; i < total; i++ {
		if i > 0 {
			if err := bc.Throttle.Wait(ctx); err != nil {
				_ = g.Wait()
				abortFrom(i)
				return
			}
		}
		g.Go(func() error {
			record(i, process(gctx, i))
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Runner) note(ctx context.Context, d entity.ContactDraft) string {
	if r.strategy == nil || d.OutreachContext == "" {
		return ""
	}
	note, err := r.strategy.OutreachNote(ctx, d.Person, d.Company, d.OutreachContext)
	if err != nil {
		r.logger.WarnContext(ctx, "outreach note failed", slog.String("name", d.Name), slog.Any("error", err))
		return ""
	}
	return note
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
