package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/dto"
	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/service/session"
	"github.com/octobees/contact-enricher/internal/service/strategy"
)

func TestStrategyHandler_Generate(t *testing.T) {
	e := echo.New()
	withAI := newTestSession()
	withAI.Strategist = &stubStrategist{strategy: entity.TargetingStrategy{
		Titles:      []string{"VP Engineering"},
		Seniorities: []entity.Seniority{entity.SeniorityVP},
	}}
	malformed := newTestSession()
	malformed.Strategist = &stubStrategist{err: strategy.ErrMalformedResponse}

	tests := map[string]struct {
		session    *session.Session
		payload    any
		expectCode int
	}{
		"empty goal":         {session: withAI, payload: map[string]string{"goal": " "}, expectCode: http.StatusBadRequest},
		"no ai key":          {session: newTestSession(), payload: map[string]string{"goal": "sell"}, expectCode: http.StatusBadRequest},
		"malformed response": {session: malformed, payload: map[string]string{"goal": "sell"}, expectCode: http.StatusBadGateway},
		"success":            {session: withAI, payload: map[string]string{"goal": "sell", "industry": "software"}, expectCode: http.StatusOK},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/strategy", tt.payload)
			authenticate(c)
			if err := NewStrategyHandler(&stubSessions{session: tt.session}).Generate(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, rec.Code)
			}
			if tt.expectCode == http.StatusOK {
				var resp dto.StrategyResponse
				decodeEnvelope(t, rec, &resp)
				if resp.Model != "test-model" || len(resp.Strategy.Titles) != 1 {
					t.Fatalf("unexpected response: %+v", resp)
				}
			}
		})
	}
}
