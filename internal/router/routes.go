package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/auth"
	"github.com/octobees/contact-enricher/internal/config"
	"github.com/octobees/contact-enricher/internal/handler"
	middlewarepkg "github.com/octobees/contact-enricher/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Account   *handler.AccountHandler
	Enrich    *handler.EnrichHandler
	Companies *handler.CompaniesHandler
	Strategy  *handler.StrategyHandler
	Schema    *handler.SchemaHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	api := e.Group("/api/v1")
	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)

	secured := api.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	limited := secured.Group("", middlewarepkg.EnrichRateLimiter(cfg.RateLimitEnrich))
	limited.POST("/contacts/enrich", handlers.Enrich.EnrichContact)
	limited.POST("/contacts/enrich/csv", handlers.Enrich.EnrichCSV)
	limited.POST("/companies/enrich", handlers.Companies.Enrich)
	limited.POST("/strategy", handlers.Strategy.Generate)

	secured.GET("/schema", handlers.Schema.Validate)
	secured.POST("/schema/setup", handlers.Schema.Setup)

	secured.PUT("/account/keys", handlers.Account.UpdateKeys)
	secured.PUT("/account/password", handlers.Account.ChangePassword)
	secured.DELETE("/account", handlers.Account.Delete)
}
