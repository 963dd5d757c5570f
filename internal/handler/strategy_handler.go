package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/dto"
	"github.com/octobees/contact-enricher/internal/service/strategy"
)

// StrategyHandler previews the targeting filters generated for a goal.
type StrategyHandler struct {
	sessions SessionOpener
}

// NewStrategyHandler constructs a StrategyHandler.
func NewStrategyHandler(sessions SessionOpener) *StrategyHandler {
	return &StrategyHandler{sessions: sessions}
}

// Generate handles POST /api/v1/strategy.
func (h *StrategyHandler) Generate(c echo.Context) error {
	var req dto.StrategyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		return Error(c, http.StatusBadRequest, strategy.ErrEmptyGoal.Error())
	}

	sess, err := openSession(c, h.sessions)
	if sess == nil {
		return err
	}
	defer closeSession(c, sess)
	if sess.Strategist == nil {
		return Error(c, http.StatusBadRequest, strategy.ErrNoAIKey.Error())
	}

	s, err := sess.Strategist.Generate(c.Request().Context(), req.Goal, req.Industry)
	if err != nil {
		return fail(c, err, "unable to generate targeting strategy")
	}
	return Success(c, http.StatusOK, "strategy generated", dto.StrategyResponse{
		Model:    sess.Strategist.Model(),
		Strategy: s,
	})
}
