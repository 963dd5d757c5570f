// Package session assembles the per-account collaborators used by one enrichment run.
package session

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/provider/apollo"
	"github.com/octobees/contact-enricher/internal/service"
	"github.com/octobees/contact-enricher/internal/service/batch"
	"github.com/octobees/contact-enricher/internal/service/resolver"
	"github.com/octobees/contact-enricher/internal/service/strategy"
	"github.com/octobees/contact-enricher/internal/service/upsert"
	"github.com/octobees/contact-enricher/internal/workspace/notion"
)

// SchemaManager validates and extends the destination database.
type SchemaManager interface {
	ValidateSchema(ctx context.Context) (notion.SchemaReport, error)
	SetupSchema(ctx context.Context, includeOptional bool) (notion.SetupResult, error)
}

// Strategist generates targeting filters.
type Strategist interface {
	Generate(ctx context.Context, goal, industry string) (entity.TargetingStrategy, error)
	Model() string
}

// Session bundles the collaborators bound to one set of provider credentials. Close it when
// the request or command that opened it is done.
type Session struct {
	UserID        uuid.UUID
	Runner        *batch.Runner
	Schema        SchemaManager
	Strategist    Strategist
	RowDelay      time.Duration
	RowsPerMinute int
	PeopleCap     int
}

// NewBatch prepares a run of size rows. A rows-per-minute rate takes precedence over the
// fixed row delay.
func (s *Session) NewBatch(size int) *batch.BatchContext {
	var throttle batch.Throttle = batch.NoThrottle{}
	switch {
	case s.RowsPerMinute > 0:
		throttle = batch.NewRateThrottle(s.RowsPerMinute, time.Minute)
	case s.RowDelay > 0:
		throttle = batch.FixedDelay(s.RowDelay)
	}
	return batch.NewBatchContext(size, throttle)
}

// Close releases the strategist's model client, if it holds one.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if c, ok := s.Strategist.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Settings are the process-wide knobs applied to every session.
type Settings struct {
	ProviderBaseURL  string
	ProviderTimeout  time.Duration
	MaxAttempts      int
	FallbackPolicy   entity.FallbackPolicy
	SkipExisting     bool
	Workers          int
	RowDelay         time.Duration
	RowsPerMinute    int
	PeoplePerCompany int
	PhoneRegion      string
	ProfileDomains   []string
}

// Factory builds sessions from decrypted credentials.
type Factory struct {
	settings   Settings
	locker     upsert.Locker
	normalizer *service.ContactNormalizer
	logger     *slog.Logger
}

// NewFactory shares locker across every session so dedup is serialised process-wide.
func NewFactory(settings Settings, locker upsert.Locker, logger *slog.Logger) *Factory {
	if locker == nil {
		locker = upsert.NewMemoryLocker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	normalizer := service.NewContactNormalizer(
		service.WithDefaultRegion(settings.PhoneRegion),
		service.WithProfileDomains(settings.ProfileDomains...),
	)
	return &Factory{
		settings:   settings,
		locker:     locker,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Open wires provider, workspace, resolver, engine and runner for creds. The strategist is nil
// when no AI key is present. extra options are applied to the runner last.
func (f *Factory) Open(ctx context.Context, creds entity.ProviderCredentials, extra ...batch.Option) (*Session, error) {
	logger := f.logger.With(slog.String("user_id", creds.UserID.String()))

	providerOpts := []apollo.Option{apollo.WithLogger(logger)}
	if f.settings.ProviderBaseURL != "" {
		providerOpts = append(providerOpts, apollo.WithBaseURL(f.settings.ProviderBaseURL))
	}
	if f.settings.ProviderTimeout > 0 {
		providerOpts = append(providerOpts, apollo.WithTimeout(f.settings.ProviderTimeout))
	}
	if f.settings.MaxAttempts > 0 {
		providerOpts = append(providerOpts, apollo.WithMaxAttempts(f.settings.MaxAttempts))
	}
	provider, err := apollo.New(creds.ApolloKey, providerOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create provider client")
	}

	store, err := notion.New(creds.NotionToken, creds.NotionDatabaseID,
		notion.WithLogger(logger), notion.WithNormalizer(f.normalizer))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create workspace store")
	}

	mode := upsert.ModeUpdate
	if f.settings.SkipExisting {
		mode = upsert.ModeSkipExisting
	}
	engine := upsert.New(store, upsert.WithLocker(f.locker), upsert.WithMode(mode), upsert.WithLogger(logger))
	res := resolver.New(provider,
		resolver.WithFallbackPolicy(f.settings.FallbackPolicy),
		resolver.WithNormalizer(f.normalizer),
		resolver.WithLogger(logger),
	)

	runnerOpts := []batch.Option{
		batch.WithCompanyFlow(provider, store),
		batch.WithWorkers(f.settings.Workers),
		batch.WithLogger(logger),
	}

	s := &Session{
		UserID:        creds.UserID,
		Schema:        store,
		RowDelay:      f.settings.RowDelay,
		RowsPerMinute: f.settings.RowsPerMinute,
		PeopleCap:     f.settings.PeoplePerCompany,
	}
	if creds.AIKey != "" {
		completer, err := strategy.NewCompleter(ctx, creds.AIProvider, creds.AIKey)
		if err != nil {
			return nil, err
		}
		gen := strategy.NewGenerator(completer, logger)
		s.Strategist = gen
		runnerOpts = append(runnerOpts, batch.WithStrategist(gen))
	}
	s.Runner = batch.New(res, engine, append(runnerOpts, extra...)...)
	return s, nil
}

// CredentialSource decrypts the stored keys of an account.
type CredentialSource interface {
	Credentials(ctx context.Context, userID uuid.UUID) (*entity.ProviderCredentials, error)
}

// Manager opens sessions for authenticated accounts.
type Manager struct {
	creds   CredentialSource
	factory *Factory
}

// NewManager wires a manager.
func NewManager(creds CredentialSource, factory *Factory) *Manager {
	return &Manager{creds: creds, factory: factory}
}

// ForUser decrypts the account's keys and opens a session with them.
func (m *Manager) ForUser(ctx context.Context, userID uuid.UUID) (*Session, error) {
	creds, err := m.creds.Credentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.factory.Open(ctx, *creds)
}
