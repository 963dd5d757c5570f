package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/octobees/contact-enricher/internal/auth"
	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/service/vault"
)

// ErrEmptyCredentials is returned when email or password is blank.
var ErrEmptyCredentials = errors.New("email and password must not be empty")

// AccountVault is the subset of the credential vault used for sign-in.
type AccountVault interface {
	Register(ctx context.Context, in vault.RegisterInput) (*entity.Credential, error)
	Login(ctx context.Context, email, password string) (*entity.ProviderCredentials, error)
}

// Session is the result of a successful sign-in.
type Session struct {
	Token       string
	ExpiresIn   time.Duration
	Credentials *entity.ProviderCredentials
}

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	vault AccountVault
	jwt   *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(v AccountVault, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{vault: v, jwt: jwtManager}
}

// Login validates credentials and returns a JWT with the decrypted keys.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	creds, err := s.vault.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(creds.UserID.String(), creds.Email)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresIn: s.jwt.TTL(), Credentials: creds}, nil
}

// Register stores a new account and signs it in.
func (s *AuthService) Register(ctx context.Context, in vault.RegisterInput) (*Session, error) {
	cred, err := s.vault.Register(ctx, in)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(cred.ID.String(), cred.Email)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		ExpiresIn: s.jwt.TTL(),
		Credentials: &entity.ProviderCredentials{
			UserID:           cred.ID,
			Email:            cred.Email,
			ApolloKey:        strings.TrimSpace(in.ApolloKey),
			NotionToken:      strings.TrimSpace(in.NotionToken),
			NotionDatabaseID: strings.TrimSpace(in.NotionDatabaseID),
			AIKey:            strings.TrimSpace(in.AIKey),
			AIProvider:       cred.AIProvider,
		},
	}, nil
}
