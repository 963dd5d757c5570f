package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/provider/apollo"
	"github.com/octobees/contact-enricher/internal/service/resolver"
	"github.com/octobees/contact-enricher/internal/service/upsert"
)

type stubResolver struct {
	resolve func(row entity.ContactRow) resolver.Resolution
}

func (s *stubResolver) Resolve(_ context.Context, row entity.ContactRow) resolver.Resolution {
	return s.resolve(row)
}

type recordingUpserter struct {
	mu         sync.Mutex
	candidates []upsert.Candidate
	existing   map[string]bool
	failFor    map[string]bool
}

func (u *recordingUpserter) Upsert(_ context.Context, c upsert.Candidate) entity.EnrichmentResult {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.candidates = append(u.candidates, c)
	switch {
	case u.failFor[c.Draft.Name]:
		return entity.Failed(entity.FailureWrite, "boom")
	case u.existing[c.Draft.Name]:
		return entity.Skipped(c.MatchedBy, "Already exists (found via "+string(c.MatchedBy)+")")
	default:
		return entity.Succeeded(entity.ActionCreated, c.MatchedBy, "Created via "+string(c.MatchedBy))
	}
}

type fakeDirectory struct {
	companies map[string]*entity.CompanyRecord
	people    []entity.PersonRecord
	params    []apollo.SearchPeopleParams
	searchErr error
}

func (d *fakeDirectory) SearchCompany(_ context.Context, name string) (*entity.CompanyRecord, error) {
	if d.searchErr != nil {
		return nil, d.searchErr
	}
	return d.companies[name], nil
}

func (d *fakeDirectory) SearchPeople(_ context.Context, p apollo.SearchPeopleParams) ([]entity.PersonRecord, error) {
	d.params = append(d.params, p)
	return d.people, nil
}

type fakeIndex map[string]bool

func (f fakeIndex) CompanyExists(_ context.Context, company string) (bool, error) {
	return f[company], nil
}

type fakeStrategist struct {
	strategy entity.TargetingStrategy
	err      error
	goals    []string
	notes    int
}

func (f *fakeStrategist) Generate(_ context.Context, goal, industry string) (entity.TargetingStrategy, error) {
	f.goals = append(f.goals, goal+"|"+industry)
	return f.strategy, f.err
}

func (f *fakeStrategist) OutreachNote(context.Context, entity.PersonRecord, *entity.CompanyRecord, string) (string, error) {
	f.notes++
	return "lead with savings", nil
}

func found(name, company string, path entity.MatchPath) resolver.Resolution {
	return resolver.Resolution{
		Person:    &entity.PersonRecord{Name: name},
		Company:   &entity.CompanyRecord{Name: company},
		MatchedBy: path,
		Attempted: []entity.MatchPath{path},
	}
}

func TestProcessContacts(t *testing.T) {
	res := &stubResolver{resolve: func(row entity.ContactRow) resolver.Resolution {
		switch row.PersonName {
		case "Karen Lynch":
			return found("Karen Lynch", "CVS Health", entity.MatchNameCompany)
		case "Existing":
			return found("Existing", "Acme", entity.MatchEmail)
		case "Broken":
			return resolver.Resolution{Attempted: []entity.MatchPath{entity.MatchLinkedIn}, Err: errors.New("provider down")}
		default:
			return resolver.Resolution{}
		}
	}}
	up := &recordingUpserter{existing: map[string]bool{"Existing": true}}

	var positions []int
	r := New(res, up, WithProgress(func(pos, total int, _ entity.EnrichmentResult) {
		positions = append(positions, pos)
	}))

	rows := []entity.ContactRow{
		{Row: 1, PersonName: "Karen Lynch", CompanyName: "cvs"},
		{Row: 2, PersonName: "Nobody"},
		{Row: 3, PersonName: "Existing"},
		{Row: 4, PersonName: "Broken"},
	}
	bc := NewBatchContext(len(rows), nil)
	rep := r.ProcessContacts(context.Background(), bc, rows, ContactOptions{})

	gt.Array(t, rep.Results).Length(4)
	gt.Value(t, rep.Summary).Equal(entity.Summary{Total: 4, Success: 1, Skipped: 1, Failed: 2})
	gt.Value(t, positions).Equal([]int{1, 2, 3, 4})

	gt.Value(t, rep.Results[0].Message).Equal("Created via name_company")
	gt.Value(t, rep.Results[0].Row).Equal(1)
	gt.Value(t, up.candidates[0].Draft.CompanyName).Equal("CVS Health")

	gt.Value(t, rep.Results[1].Message).Equal("Not found in provider (tried: none)")
	gt.Value(t, rep.Results[1].Input).Equal("Nobody")
	gt.Value(t, rep.Results[1].Failure).Equal(entity.FailureNotFound)

	gt.Value(t, rep.Results[2].Message).Equal("Already exists (found via email)")
	gt.Value(t, rep.Results[3].Failure).Equal(entity.FailureUnexpected)
	gt.Value(t, rep.Results[3].Message).Equal("provider down")
}

func TestProcessContacts_GoalAddsNote(t *testing.T) {
	res := &stubResolver{resolve: func(row entity.ContactRow) resolver.Resolution {
		return found(row.PersonName, "CVS Health", entity.MatchLinkedIn)
	}}
	up := &recordingUpserter{}
	strat := &fakeStrategist{}
	r := New(res, up, WithStrategist(strat))

	rows := []entity.ContactRow{{Row: 1, PersonName: "A"}}
	r.ProcessContacts(context.Background(), NewBatchContext(1, nil), rows, ContactOptions{Goal: "pharmacy partnerships"})

	gt.Value(t, strat.notes).Equal(1)
	gt.Value(t, up.candidates[0].Draft.AINote).Equal("lead with savings")
	gt.Value(t, up.candidates[0].Draft.OutreachContext).Equal("pharmacy partnerships")
}

func TestProcessContacts_ParallelKeepsOrder(t *testing.T) {
	res := &stubResolver{resolve: func(row entity.ContactRow) resolver.Resolution {
		return found(row.PersonName, "Acme", entity.MatchEmail)
	}}
	up := &recordingUpserter{}
	r := New(res, up, WithWorkers(4))

	rows := make([]entity.ContactRow, 20)
	for i := range rows {
		rows[i] = entity.ContactRow{Row: i + 1, PersonName: string(rune('a' + i))}
	}
	rep := r.ProcessContacts(context.Background(), NewBatchContext(len(rows), NoThrottle{}), rows, ContactOptions{})

	gt.Array(t, rep.Results).Length(20)
	for i, res := range rep.Results {
		gt.Value(t, res.Row).Equal(i + 1)
	}
	gt.Value(t, rep.Summary.Success).Equal(20)
}

func TestProcessContacts_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	res := &stubResolver{resolve: func(row entity.ContactRow) resolver.Resolution {
		cancel()
		return found(row.PersonName, "Acme", entity.MatchEmail)
	}}
	r := New(res, &recordingUpserter{})

	rows := []entity.ContactRow{{Row: 1, PersonName: "a"}, {Row: 2, PersonName: "b"}, {Row: 3, PersonName: "c"}}
	rep := r.ProcessContacts(ctx, NewBatchContext(len(rows), FixedDelay(0)), rows, ContactOptions{})

	gt.Array(t, rep.Results).Length(3)
	gt.Value(t, rep.Results[0].Status).Equal(entity.StatusSuccess)
	gt.Value(t, rep.Results[1].Message).Equal("batch cancelled")
	gt.Value(t, rep.Results[2].Message).Equal("batch cancelled")
}

func TestProcessCompanies(t *testing.T) {
	email := "a@cvs.com"
	dir := &fakeDirectory{
		companies: map[string]*entity.CompanyRecord{
			"CVS Health": {ProviderID: "org-1", Name: "CVS Health", Industry: "health plan", EmployeeCount: 300000, RevenueRange: entity.RevenueOver200M},
		},
		people: []entity.PersonRecord{
			{Name: "Karen Lynch", Email: &email},
			{Name: "Existing"},
		},
	}
	up := &recordingUpserter{existing: map[string]bool{"Existing": true}}
	strat := &fakeStrategist{strategy: entity.TargetingStrategy{
		Titles:      []string{"CFO"},
		Seniorities: []entity.Seniority{entity.SeniorityCSuite},
	}}
	r := New(nil, up, WithCompanyFlow(dir, fakeIndex{"Humana": true}), WithStrategist(strat))

	names := []string{"CVS Health", "Humana", "Unknown Co"}
	rep, err := r.ProcessCompanies(context.Background(), NewBatchContext(len(names), nil), names, CompanyOptions{Goal: "finance leaders", Limit: 5})
	gt.NoError(t, err).Required()

	gt.Value(t, strat.goals).Equal([]string{"finance leaders|health plan"})
	gt.Value(t, rep.Strategy.Titles).Equal([]string{"CFO"})
	gt.Array(t, dir.params).Length(1)
	gt.Value(t, dir.params[0].CompanyID).Equal("org-1")
	gt.Value(t, dir.params[0].Limit).Equal(5)

	cvs := rep.Results[0]
	gt.Value(t, cvs.Status).Equal(entity.StatusSuccess)
	gt.Value(t, cvs.Message).Equal("Found 2, Added 1, Skipped 1")
	gt.Value(t, cvs.Tier).Equal("Tier 2 - Strategic")
	gt.Value(t, *cvs.Contacts).Equal(entity.ContactCounts{Found: 2, Created: 1, Skipped: 1})
	gt.Value(t, up.candidates[0].Draft.Tier).Equal(entity.Tier2)
	gt.Value(t, up.candidates[0].Draft.OutreachContext).Equal("finance leaders")

	gt.Value(t, rep.Results[1].Status).Equal(entity.StatusSkipped)
	gt.Value(t, rep.Results[2].Failure).Equal(entity.FailureNotFound)
	gt.Value(t, rep.Summary).Equal(entity.Summary{Total: 3, Success: 1, Skipped: 1, Failed: 1})
}

func TestProcessCompanies_DefaultTitles(t *testing.T) {
	dir := &fakeDirectory{companies: map[string]*entity.CompanyRecord{
		"Pfizer": {ProviderID: "org-2", Name: "Pfizer", Industry: "pharmaceuticals"},
	}}
	r := New(nil, &recordingUpserter{}, WithCompanyFlow(dir, nil))

	rep, err := r.ProcessCompanies(context.Background(), NewBatchContext(1, nil), []string{"Pfizer"}, CompanyOptions{})
	gt.NoError(t, err).Required()
	gt.Value(t, rep.Strategy).Nil()
	gt.Array(t, dir.params[0].Titles).Has("CEO")
	gt.Value(t, rep.Results[0].Message).Equal("Found 0, Added 0, Skipped 0")
}

func TestProcessCompanies_StrategyError(t *testing.T) {
	boom := errors.New("model unavailable")
	r := New(nil, &recordingUpserter{}, WithCompanyFlow(&fakeDirectory{}, nil), WithStrategist(&fakeStrategist{err: boom}))
	_, err := r.ProcessCompanies(context.Background(), NewBatchContext(1, nil), []string{"X"}, CompanyOptions{Goal: "g", Industry: "Pharma"})
	gt.Error(t, err).Is(boom)
}
