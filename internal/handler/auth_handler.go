package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/dto"
	"github.com/octobees/contact-enricher/internal/service"
	"github.com/octobees/contact-enricher/internal/service/vault"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/v1/auth/register requests.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "email and password are required")
	}

	sess, err := h.authService.Register(c.Request().Context(), vault.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		ApolloKey:        req.ApolloKey,
		NotionToken:      req.NotionToken,
		NotionDatabaseID: req.NotionDatabaseID,
		AIKey:            req.AIKey,
		AIProvider:       req.AIProvider,
	})
	if err != nil {
		return fail(c, err, "unable to register user")
	}

	return Success(c, http.StatusCreated, "registration successful", loginResponse(sess))
}

// Login handles POST /api/v1/auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "email and password are required")
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err, "unable to authenticate")
	}

	return Success(c, http.StatusOK, "login successful", loginResponse(sess))
}

func loginResponse(sess *service.Session) dto.LoginResponse {
	out := dto.LoginResponse{
		AccessToken: sess.Token,
		ExpiresIn:   int64(sess.ExpiresIn.Seconds()),
	}
	if creds := sess.Credentials; creds != nil {
		out.Email = creds.Email
		out.NotionDatabaseID = creds.NotionDatabaseID
		out.AIProvider = creds.AIProvider
		out.HasAIKey = creds.AIKey != ""
	}
	return out
}
