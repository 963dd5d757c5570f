package upsert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/octobees/contact-enricher/internal/entity"
)

// Store is the destination workspace.
type Store interface {
	FindContact(ctx context.Context, name, company string) (*entity.ContactPage, error)
	CreateContact(ctx context.Context, d entity.ContactDraft) (string, error)
	UpdateContact(ctx context.Context, pageID string, d entity.ContactDraft) error
}

// Mode decides what happens when the contact already exists.
type Mode int

const (
	// ModeUpdate refreshes the existing page.
	ModeUpdate Mode = iota
	// ModeSkipExisting leaves the existing page untouched and reports skipped.
	ModeSkipExisting
)

// Candidate is a resolved contact ready to be written.
type Candidate struct {
	Draft     entity.ContactDraft
	MatchedBy entity.MatchPath
}

// Engine performs the dedup check and exactly one write per candidate.
type Engine struct {
	store  Store
	locker Locker
	mode   Mode
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker replaces the in-process locker.
func WithLocker(l Locker) Option {
	return func(e *Engine) {
		if l != nil {
			e.locker = l
		}
	}
}

// WithMode sets the behaviour for existing contacts.
func WithMode(m Mode) Option {
	return func(e *Engine) { e.mode = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the enrichment timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds an engine over store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		locker: NewMemoryLocker(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exists returns the matching page for (name, company), or nil.
func (e *Engine) Exists(ctx context.Context, name, company string) (*entity.ContactPage, error) {
	return e.store.FindContact(ctx, strings.TrimSpace(name), strings.TrimSpace(company))
}

// Upsert checks for an existing page and then creates, updates or skips. The check and the
// write hold the (name, company) lock so concurrent workers cannot both create. Store errors
// are reported as failed results.
func (e *Engine) Upsert(ctx context.Context, c Candidate) entity.EnrichmentResult {
	d := c.Draft
	d.Name = strings.TrimSpace(d.Name)
	d.CompanyName = strings.TrimSpace(d.CompanyName)
	if d.Name == "" {
		return e.finish(c.MatchedBy, entity.Failed(entity.FailureUnexpected, "contact has no name"), d)
	}
	if d.EnrichedAt.IsZero() {
		d.EnrichedAt = e.now()
	}

	unlock, err := e.locker.Lock(ctx, ContactKey(d.Name, d.CompanyName))
	if err != nil {
		return e.finish(c.MatchedBy, entity.Failed(entity.FailureUnexpected, fmt.Sprintf("lock contact: %v", err)), d)
	}
	defer unlock()

	existing, err := e.Exists(ctx, d.Name, d.CompanyName)
	if err != nil {
		e.logger.WarnContext(ctx, "dedup check failed", "name", d.Name, "company", d.CompanyName, "error", err)
		return e.finish(c.MatchedBy, entity.Failed(entity.FailureWrite, err.Error()), d)
	}

	if existing != nil {
		if e.mode == ModeSkipExisting {
			res := entity.Skipped(c.MatchedBy, fmt.Sprintf("Already exists (found via %s)", c.MatchedBy))
			res.PageID = existing.ID
			return e.finish(c.MatchedBy, res, d)
		}
		if err := e.store.UpdateContact(ctx, existing.ID, d); err != nil {
			e.logger.WarnContext(ctx, "update contact failed", "page_id", existing.ID, "error", err)
			return e.finish(c.MatchedBy, entity.Failed(entity.FailureWrite, err.Error()), d)
		}
		res := entity.Succeeded(entity.ActionUpdated, c.MatchedBy, fmt.Sprintf("Updated via %s", c.MatchedBy))
		res.PageID = existing.ID
		return e.finish(c.MatchedBy, res, d)
	}

	pageID, err := e.store.CreateContact(ctx, d)
	if err != nil {
		e.logger.WarnContext(ctx, "create contact failed", "name", d.Name, "error", err)
		return e.finish(c.MatchedBy, entity.Failed(entity.FailureWrite, err.Error()), d)
	}
	res := entity.Succeeded(entity.ActionCreated, c.MatchedBy, fmt.Sprintf("Created via %s", c.MatchedBy))
	res.PageID = pageID
	return e.finish(c.MatchedBy, res, d)
}

func (e *Engine) finish(path entity.MatchPath, res entity.EnrichmentResult, d entity.ContactDraft) entity.EnrichmentResult {
	if res.MatchedBy == "" {
		res.MatchedBy = path
	}
	res.Input = d.Name
	person := d.Person
	res.Person = &person
	res.Company = d.Company
	if d.Tier.Valid() {
		res.Tier = d.Tier.Label()
	}
	res.Priority = d.Priority
	return res
}
