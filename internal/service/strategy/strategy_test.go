package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/octobees/contact-enricher/internal/entity"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []Prompt
}

func (f *fakeCompleter) Complete(_ context.Context, p Prompt) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

func (f *fakeCompleter) Model() string { return "fake" }

type closingCompleter struct {
	fakeCompleter
	closed int
}

func (c *closingCompleter) Close() error {
	c.closed++
	return nil
}

func TestParseStrategy(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		s, err := ParseStrategy("```json\n{\"titles\":[\"CFO\",\" \"],\"seniorities\":[\"c_suite\",\"ceo\",\"vp\",\"vp\"],\"locations\":[],\"explanation\":\"finance\"}\n```")
		gt.NoError(t, err).Required()
		gt.Array(t, s.Titles).Length(1)
		gt.Value(t, s.Seniorities).Equal([]entity.Seniority{entity.SeniorityCSuite, entity.SeniorityVP})
		gt.Value(t, s.Locations).Nil()
		gt.Value(t, s.Explanation).Equal("finance")
	})

	t.Run("json inside prose", func(t *testing.T) {
		s, err := ParseStrategy("Sure! Here you go: {\"titles\":[\"CTO\"],\"seniorities\":[\"director\"],\"locations\":[\"Boston\"]} Hope it helps.")
		gt.NoError(t, err).Required()
		gt.Array(t, s.Locations).Has("Boston")
		gt.Array(t, s.Seniorities).Has(entity.SeniorityDirector)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := ParseStrategy(`{"titles":["CTO"]}`)
		gt.Error(t, err).Is(ErrMalformedResponse)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseStrategy("I cannot help with that")
		gt.Error(t, err).Is(ErrMalformedResponse)
	})
}

func TestGenerator_Generate(t *testing.T) {
	fake := &fakeCompleter{reply: `{"titles":["VP Sales"],"seniorities":["vp"],"locations":null,"explanation":"sales"}`}
	g := NewGenerator(fake, nil)

	s, err := g.Generate(context.Background(), "sales leaders", "")
	gt.NoError(t, err).Required()
	gt.Array(t, s.Titles).Has("VP Sales")
	gt.Array(t, fake.prompts).Length(1)
	gt.String(t, fake.prompts[0].User).Contains(`"sales leaders"`)
	gt.String(t, fake.prompts[0].User).Contains("COMPANY INDUSTRY: Not specified")
	gt.Value(t, fake.prompts[0].MaxTokens).Equal(800)

	_, err = g.Generate(context.Background(), "  ", "")
	gt.Error(t, err).Is(ErrEmptyGoal)

	boom := errors.New("boom")
	_, err = NewGenerator(&fakeCompleter{err: boom}, nil).Generate(context.Background(), "x", "Pharma")
	gt.Error(t, err).Is(boom)
}

func TestGenerator_OutreachNote(t *testing.T) {
	fake := &fakeCompleter{reply: "  Lead with cost savings.  "}
	g := NewGenerator(fake, nil)

	note, err := g.OutreachNote(context.Background(),
		entity.PersonRecord{Name: "Karen Lynch", Title: "CEO"},
		&entity.CompanyRecord{Name: "CVS Health", Industry: "pharmacy", EmployeeCount: 300000},
		"pharmacy partnerships")
	gt.NoError(t, err).Required()
	gt.Value(t, note).Equal("Lead with cost savings.")
	gt.String(t, fake.prompts[0].User).Contains("**Company Size**: 300000 employees")
	gt.String(t, fake.prompts[0].User).Contains("**Outreach Goal**: pharmacy partnerships")

	_, err = g.OutreachNote(context.Background(), entity.PersonRecord{}, nil, "goal")
	gt.NoError(t, err)
	gt.String(t, fake.prompts[1].User).Contains("**Contact**: this contact")
}

func TestOpenAICompleter(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter("sk-test", srv.URL+"/v1")
	out, err := c.Complete(context.Background(), Prompt{System: "sys", User: "hi", Temperature: 0.3, MaxTokens: 800})
	gt.NoError(t, err).Required()
	gt.Value(t, out).Equal("hello")
	gt.Value(t, got["model"]).Equal(any("gpt-4o-mini"))
	msgs, ok := got["messages"].([]any)
	gt.Bool(t, ok).True()
	gt.Array(t, msgs).Length(2)
}

func TestNewCompleter(t *testing.T) {
	_, err := NewCompleter(context.Background(), "openai", "")
	gt.Error(t, err).Is(ErrNoAIKey)

	c, err := NewCompleter(context.Background(), "", "sk-test")
	gt.NoError(t, err).Required()
	gt.Value(t, c.Model()).Equal("gpt-4o-mini")

	_, err = NewCompleter(context.Background(), "llama", "key")
	gt.Value(t, err).NotNil()
}

func TestGenerator_Close(t *testing.T) {
	c := &closingCompleter{}
	gt.NoError(t, NewGenerator(c, nil).Close())
	gt.Number(t, c.closed).Equal(1)

	// Completers without a client connection have nothing to release.
	gt.NoError(t, NewGenerator(&fakeCompleter{}, nil).Close())
	gt.NoError(t, (&GeminiCompleter{}).Close())
}
