package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-enricher/internal/auth"
	"github.com/octobees/contact-enricher/internal/dto"
	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/service"
	"github.com/octobees/contact-enricher/internal/service/vault"
)

type stubVault struct {
	register func(ctx context.Context, in vault.RegisterInput) (*entity.Credential, error)
	login    func(ctx context.Context, email, password string) (*entity.ProviderCredentials, error)
}

func (s *stubVault) Register(ctx context.Context, in vault.RegisterInput) (*entity.Credential, error) {
	if s.register != nil {
		return s.register(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (s *stubVault) Login(ctx context.Context, email, password string) (*entity.ProviderCredentials, error) {
	if s.login != nil {
		return s.login(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func newAuthHandler(t *testing.T, v service.AccountVault) *AuthHandler {
	t.Helper()
	jwtManager := auth.NewJWTManager("test-secret", 0)
	return NewAuthHandler(service.NewAuthService(v, jwtManager))
}

func registerPayload() map[string]string {
	return map[string]string{
		"email":              "user@example.com",
		"password":           "long-enough",
		"apollo_api_key":     "apollo",
		"notion_token":       "secret_notion",
		"notion_database_id": "db-1",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	e := echo.New()

	t.Run("invalid payload", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/register", "{")
		handler := newAuthHandler(t, &stubVault{})
		if err := handler.Register(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": " ", "password": ""})
		_ = newAuthHandler(t, &stubVault{}).Register(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("validation error keeps message", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/register", registerPayload())
		_ = newAuthHandler(t, &stubVault{
			register: func(ctx context.Context, in vault.RegisterInput) (*entity.Credential, error) {
				return nil, vault.ErrPasswordTooShort
			},
		}).Register(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if got := decodeEnvelope(t, rec, nil); got.Message != vault.ErrPasswordTooShort.Error() {
			t.Fatalf("unexpected message %q", got.Message)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/register", registerPayload())
		_ = newAuthHandler(t, &stubVault{
			register: func(ctx context.Context, in vault.RegisterInput) (*entity.Credential, error) {
				return nil, vault.ErrEmailRegistered
			},
		}).Register(c)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/register", registerPayload())
		var got vault.RegisterInput
		_ = newAuthHandler(t, &stubVault{
			register: func(ctx context.Context, in vault.RegisterInput) (*entity.Credential, error) {
				got = in
				return &entity.Credential{ID: uuid.New(), Email: in.Email, AIProvider: "openai"}, nil
			},
		}).Register(c)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if got.ApolloKey != "apollo" || got.NotionDatabaseID != "db-1" {
			t.Fatalf("keys not forwarded: %+v", got)
		}
		var resp dto.LoginResponse
		decodeEnvelope(t, rec, &resp)
		if resp.AccessToken == "" || resp.ExpiresIn != 86400 || resp.HasAIKey {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	e := echo.New()
	payload := map[string]string{"email": "user@example.com", "password": "secret-password"}

	t.Run("invalid payload", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/login", "{")
		_ = newAuthHandler(t, &stubVault{}).Login(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/login", payload)
		_ = newAuthHandler(t, &stubVault{
			login: func(ctx context.Context, email, password string) (*entity.ProviderCredentials, error) {
				return nil, vault.ErrInvalidCredentials
			},
		}).Login(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unexpected error", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/login", payload)
		_ = newAuthHandler(t, &stubVault{
			login: func(ctx context.Context, email, password string) (*entity.ProviderCredentials, error) {
				return nil, errors.New("db down")
			},
		}).Login(c)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if got := decodeEnvelope(t, rec, nil); got.Message != "unable to authenticate" {
			t.Fatalf("internal error leaked: %q", got.Message)
		}
	})

	t.Run("success", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/auth/login", payload)
		_ = newAuthHandler(t, &stubVault{
			login: func(ctx context.Context, email, password string) (*entity.ProviderCredentials, error) {
				return &entity.ProviderCredentials{
					UserID:           uuid.New(),
					Email:            email,
					NotionDatabaseID: "db-1",
					AIKey:            "sk-test",
					AIProvider:       "gemini",
				}, nil
			},
		}).Login(c)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp dto.LoginResponse
		decodeEnvelope(t, rec, &resp)
		if resp.Email != "user@example.com" || !resp.HasAIKey || resp.AIProvider != "gemini" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})
}
