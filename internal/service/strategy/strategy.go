package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/octobees/contact-enricher/internal/entity"
)

var (
	// ErrNoAIKey is returned when no language-model key is configured.
	ErrNoAIKey = errors.New("no AI API key configured")
	// ErrEmptyGoal is returned when the outreach goal is blank.
	ErrEmptyGoal = errors.New("outreach goal is required")
	// ErrMalformedResponse is returned when the model output is not a usable strategy.
	ErrMalformedResponse = errors.New("AI response missing required fields (titles, seniorities)")
)

const (
	strategyTemperature = 0.3
	strategyMaxTokens   = 800
	noteTemperature     = 0.7
	noteMaxTokens       = 200
	unspecified         = "Not specified"
)

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// Generator turns free-text goals into search filters and outreach notes.
type Generator struct {
	completer Completer
	logger    *slog.Logger
}

// NewGenerator wraps a completer.
func NewGenerator(c Completer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{completer: c, logger: logger}
}

// Model reports the backing model name.
func (g *Generator) Model() string { return g.completer.Model() }

// Close releases the completer when it holds a client connection.
func (g *Generator) Close() error {
	if c, ok := g.completer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Generate asks the model for titles, seniorities and locations matching goal.
func (g *Generator) Generate(ctx context.Context, goal, industry string) (entity.TargetingStrategy, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return entity.TargetingStrategy{}, ErrEmptyGoal
	}
	if strings.TrimSpace(industry) == "" {
		industry = unspecified
	}

	text, err := g.completer.Complete(ctx, Prompt{
		System:      targetingSystemPrompt,
		User:        fmt.Sprintf(targetingUserPrompt, goal, industry),
		Temperature: strategyTemperature,
		MaxTokens:   strategyMaxTokens,
	})
	if err != nil {
		return entity.TargetingStrategy{}, err
	}

	strategy, err := ParseStrategy(text)
	if err != nil {
		return entity.TargetingStrategy{}, err
	}
	g.logger.Debug("generated targeting strategy",
		slog.String("model", g.completer.Model()),
		slog.Int("titles", len(strategy.Titles)),
		slog.Int("seniorities", len(strategy.Seniorities)),
	)
	return strategy, nil
}

// OutreachNote writes a short personalised note for one contact.
func (g *Generator) OutreachNote(ctx context.Context, person entity.PersonRecord, company *entity.CompanyRecord, goal string) (string, error) {
	name := orDefault(person.Name, "this contact")
	title := orDefault(person.Title, "unknown role")
	companyName, industry, size := "the company", "", ""
	if company != nil {
		companyName = orDefault(company.Name, companyName)
		industry = company.Industry
		if company.EmployeeCount > 0 {
			size = strconv.Itoa(company.EmployeeCount)
		}
	}

	text, err := g.completer.Complete(ctx, Prompt{
		User:        fmt.Sprintf(outreachNotePrompt, name, title, companyName, industry, size, goal),
		Temperature: noteTemperature,
		MaxTokens:   noteMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

type rawStrategy struct {
	Titles      *[]string `json:"titles"`
	Seniorities *[]string `json:"seniorities"`
	Locations   []string  `json:"locations"`
	Explanation string    `json:"explanation"`
}

// ParseStrategy decodes model output, tolerating markdown fences and surrounding prose.
func ParseStrategy(text string) (entity.TargetingStrategy, error) {
	body := stripFences(text)

	var raw rawStrategy
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		match := jsonObject.FindString(body)
		if match == "" {
			return entity.TargetingStrategy{}, goerr.Wrap(ErrMalformedResponse, "failed to parse AI response as JSON", goerr.V("response", truncate(body, 200)))
		}
		if err := json.Unmarshal([]byte(match), &raw); err != nil {
			return entity.TargetingStrategy{}, goerr.Wrap(ErrMalformedResponse, "failed to parse AI response as JSON", goerr.V("response", truncate(body, 200)))
		}
	}
	if raw.Titles == nil || raw.Seniorities == nil {
		return entity.TargetingStrategy{}, ErrMalformedResponse
	}

	out := entity.TargetingStrategy{Explanation: strings.TrimSpace(raw.Explanation)}
	for _, t := range *raw.Titles {
		if t = strings.TrimSpace(t); t != "" {
			out.Titles = append(out.Titles, t)
		}
	}
	seen := map[entity.Seniority]bool{}
	for _, s := range *raw.Seniorities {
		level, ok := parseLevel(s)
		if !ok || seen[level] {
			continue
		}
		seen[level] = true
		out.Seniorities = append(out.Seniorities, level)
	}
	for _, l := range raw.Locations {
		if l = strings.TrimSpace(l); l != "" {
			out.Locations = append(out.Locations, l)
		}
	}
	return out, nil
}

// parseLevel accepts only the five filter values the prompt offers.
func parseLevel(raw string) (entity.Seniority, bool) {
	switch s := entity.Seniority(strings.ToLower(strings.TrimSpace(raw))); s {
	case entity.SeniorityCSuite, entity.SeniorityVP, entity.SeniorityDirector, entity.SeniorityManager, entity.SenioritySenior:
		return s, true
	default:
		return "", false
	}
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
