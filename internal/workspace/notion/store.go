package notion

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"

	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/service"
)

const queryPageSize = 100

// pageAPI is the subset of notionapi.PageService used by the store.
type pageAPI interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	Update(ctx context.Context, id notionapi.PageID, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// databaseAPI is the subset of notionapi.DatabaseService used by the store.
type databaseAPI interface {
	Get(ctx context.Context, id notionapi.DatabaseID) (*notionapi.Database, error)
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	Update(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseUpdateRequest) (*notionapi.Database, error)
}

// Store reads and writes contact pages in one Notion database.
type Store struct {
	pages      pageAPI
	databases  databaseAPI
	databaseID string
	normalizer *service.ContactNormalizer
	logger     *slog.Logger

	mu     sync.Mutex
	schema map[string]string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for schema warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNormalizer overrides the profile URL rules.
func WithNormalizer(n *service.ContactNormalizer) Option {
	return func(s *Store) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// New creates a store for databaseID authenticated with an integration token.
func New(token, databaseID string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(token) == "" {
		return nil, goerr.New("Notion API token is required")
	}
	if strings.TrimSpace(databaseID) == "" {
		return nil, goerr.New("Notion database ID is required")
	}
	api := notionapi.NewClient(notionapi.Token(token), notionapi.WithRetry(3))
	return newStore(api.Page, api.Database, databaseID, opts...), nil
}

func newStore(pages pageAPI, databases databaseAPI, databaseID string, opts ...Option) *Store {
	s := &Store{
		pages:      pages,
		databases:  databases,
		databaseID: strings.TrimSpace(databaseID),
		normalizer: service.NewContactNormalizer(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindContact returns the first page whose title contains name and whose Company text
// contains company, both case-insensitive. It returns nil when nothing matches.
func (s *Store) FindContact(ctx context.Context, name, company string) (*entity.ContactPage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	want := strings.ToLower(strings.TrimSpace(company))

	var found *entity.ContactPage
	err := s.query(ctx, &notionapi.PropertyFilter{
		Property: PropContactName,
		RichText: &notionapi.TextFilterCondition{Contains: name},
	}, func(page notionapi.Page) bool {
		stored := plainText(page.Properties[PropCompany])
		if !strings.Contains(strings.ToLower(stored), want) {
			return true
		}
		found = &entity.ContactPage{
			ID:      page.ID.String(),
			Name:    plainText(page.Properties[PropContactName]),
			Company: stored,
			URL:     page.URL,
		}
		return false
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find contact", goerr.V("name", name), goerr.V("company", company))
	}
	return found, nil
}

// CompanyExists reports whether any page's Company text contains company.
func (s *Store) CompanyExists(ctx context.Context, company string) (bool, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return false, nil
	}
	resp, err := s.databases.Query(ctx, notionapi.DatabaseID(s.databaseID), &notionapi.DatabaseQueryRequest{
		Filter: &notionapi.PropertyFilter{
			Property: PropCompany,
			RichText: &notionapi.TextFilterCondition{Contains: company},
		},
		PageSize: 1,
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to query company", goerr.V("company", company))
	}
	return len(resp.Results) > 0, nil
}

// CreateContact writes a new page and returns its id.
func (s *Store) CreateContact(ctx context.Context, d entity.ContactDraft) (string, error) {
	props := s.filterOptional(ctx, s.contactProperties(d, true))
	page, err := s.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.databaseID),
		},
		Properties: props,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create contact page", goerr.V("name", d.Name), goerr.V("company", d.CompanyName))
	}
	return page.ID.String(), nil
}

// UpdateContact writes only the fields present in d, plus a fresh notes block.
func (s *Store) UpdateContact(ctx context.Context, pageID string, d entity.ContactDraft) error {
	props := s.filterOptional(ctx, s.contactProperties(d, false))
	_, err := s.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: props})
	if err != nil {
		return goerr.Wrap(err, "failed to update contact page", goerr.V("page_id", pageID), goerr.V("name", d.Name))
	}
	return nil
}

func (s *Store) query(ctx context.Context, filter notionapi.Filter, visit func(notionapi.Page) bool) error {
	var cursor notionapi.Cursor
	for {
		resp, err := s.databases.Query(ctx, notionapi.DatabaseID(s.databaseID), &notionapi.DatabaseQueryRequest{
			Filter:      filter,
			StartCursor: cursor,
			PageSize:    queryPageSize,
		})
		if err != nil {
			return err
		}
		for _, page := range resp.Results {
			if !visit(page) {
				return nil
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return nil
		}
		cursor = resp.NextCursor
	}
}

func (s *Store) contactProperties(d entity.ContactDraft, creating bool) notionapi.Properties {
	p := d.Person
	props := notionapi.Properties{}

	if creating {
		props[PropContactName] = titleValue(d.Name)
		props[PropOutreachStatus] = statusValue(defaultOutreachStatus)
	}
	if creating || d.CompanyName != "" {
		props[PropCompany] = textValue(d.CompanyName)
	}
	if p.Title != "" {
		props[PropTitle] = textValue(p.Title)
	}
	email := s.deliverableEmail(p)
	if email != "" {
		props[PropEmail] = notionapi.EmailProperty{Email: email}
	}
	if phone := entity.Deref(p.Phone); phone != "" {
		props[PropPhone] = notionapi.PhoneNumberProperty{PhoneNumber: phone}
	}
	profileURL := s.writableProfileURL(p.LinkedInURL)
	if profileURL != "" {
		props[PropLinkedIn] = notionapi.URLProperty{URL: profileURL}
	}
	for name, value := range map[string]*string{PropCity: p.City, PropState: p.State, PropCountry: p.Country} {
		if v := entity.Deref(value); v != "" {
			props[name] = textValue(v)
		}
	}
	if label := p.Seniority.Label(); label != "" {
		props[PropSeniority] = selectValue(label)
	}

	if c := d.Company; c != nil {
		if creating || c.Industry != "" {
			props[PropIndustry] = selectValue(string(entity.CategorizeIndustry(c.Industry)))
		}
		if c.EmployeeCount > 0 {
			props[PropCompanySize] = textValue(groupThousands(c.EmployeeCount) + " employees")
		}
		if website, err := service.SanitizeWebsite(c.Domain); err == nil {
			props[PropCompanyWebsite] = notionapi.URLProperty{URL: website}
		}
	}
	if creating {
		relationship := RelationshipIndustryExpert
		if profileURL != "" || email != "" {
			relationship = RelationshipProspect
		}
		props[PropRelationshipType] = selectValue(relationship)
	}
	if d.OutreachContext != "" {
		props[PropOutreachContext] = textValue(d.OutreachContext)
	}
	if d.Scored() {
		props[PropTier] = selectValue(d.Tier.Label())
		props[PropPriority] = notionapi.NumberProperty{Number: float64(d.Priority)}
	}

	if d.EnrichedAt.IsZero() {
		d.EnrichedAt = time.Now()
	}
	props[PropNotes] = textValue(BuildNotes(d, profileURL))
	return props
}

func (s *Store) deliverableEmail(p entity.PersonRecord) string {
	email := strings.TrimSpace(entity.Deref(p.Email))
	if !p.HasEmail() || !s.normalizer.IsDeliverableEmail(email) {
		return ""
	}
	return email
}

func (s *Store) writableProfileURL(raw *string) string {
	url := strings.TrimSpace(entity.Deref(raw))
	if !s.normalizer.IsWritableProfileURL(url) {
		return ""
	}
	return url
}

// filterOptional drops optional properties the database does not declare. When the schema
// cannot be read every property is kept and the write decides.
func (s *Store) filterOptional(ctx context.Context, props notionapi.Properties) notionapi.Properties {
	schema, err := s.loadSchema(ctx)
	if err != nil {
		s.logger.Warn("database schema unavailable, writing all properties", "error", err)
		return props
	}
	for _, prop := range OptionalProperties {
		if _, ok := props[prop.Name]; !ok {
			continue
		}
		if declared, ok := schema[prop.Name]; !ok || declared != string(prop.Type) {
			delete(props, prop.Name)
		}
	}
	return props
}

func (s *Store) loadSchema(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	cached := s.schema
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	db, err := s.databases.Get(ctx, notionapi.DatabaseID(s.databaseID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read database schema")
	}
	schema := schemaOf(db)
	s.storeSchema(schema)
	return schema, nil
}

func (s *Store) storeSchema(schema map[string]string) {
	copied := make(map[string]string, len(schema))
	for k, v := range schema {
		copied[k] = v
	}
	s.mu.Lock()
	s.schema = copied
	s.mu.Unlock()
}
