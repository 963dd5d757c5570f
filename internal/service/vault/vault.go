package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/repository"
)

const (
	minPasswordLength = 8
	defaultAIProvider = "openai"
)

// Errors returned to callers verbatim.
var (
	ErrInvalidEmail        = errors.New("Invalid email address")
	ErrPasswordTooShort    = errors.New("Password must be at least 8 characters")
	ErrMissingKeys         = errors.New("All API keys are required")
	ErrEmailRegistered     = errors.New("Email already registered")
	ErrInvalidCredentials  = errors.New("Invalid email or password")
	ErrAccountNotFound     = errors.New("User not found")
	ErrWrongPassword       = errors.New("Current password is incorrect")
	ErrNewPasswordTooShort = errors.New("New password must be at least 8 characters")
	ErrUnknownAIProvider   = errors.New("AI provider must be openai or gemini")
)

// RegisterInput is the plaintext registration payload.
type RegisterInput struct {
	Email            string
	Password         string `masq:"secret"`
	ApolloKey        string `masq:"secret"`
	NotionToken      string `masq:"secret"`
	NotionDatabaseID string
	AIKey            string `masq:"secret"`
	AIProvider       string
}

// KeyChange carries plaintext replacement keys. Empty fields are left unchanged.
type KeyChange struct {
	ApolloKey        string `masq:"secret"`
	NotionToken      string `masq:"secret"`
	NotionDatabaseID string
	AIKey            string `masq:"secret"`
	AIProvider       string
}

// Vault registers accounts and hands out decrypted provider credentials.
type Vault struct {
	repo   repository.CredentialRepository
	hasher *Hasher
	cipher *Cipher
	now    func() time.Time
}

// New wires a vault.
func New(repo repository.CredentialRepository, hasher *Hasher, cipher *Cipher) *Vault {
	return &Vault{repo: repo, hasher: hasher, cipher: cipher, now: time.Now}
}

// HashPassword exposes the configured hasher.
func (v *Vault) HashPassword(plain string) (string, error) { return v.hasher.Hash(plain) }

// VerifyPassword exposes the configured hasher.
func (v *Vault) VerifyPassword(plain, hash string) bool { return v.hasher.Verify(plain, hash) }

// Encrypt exposes the configured cipher.
func (v *Vault) Encrypt(plaintext string) (string, error) { return v.cipher.Encrypt(plaintext) }

// Decrypt exposes the configured cipher.
func (v *Vault) Decrypt(ciphertext string) (string, error) { return v.cipher.Decrypt(ciphertext) }

// Register validates input, hashes the password, encrypts the keys and stores the account.
func (v *Vault) Register(ctx context.Context, in RegisterInput) (*entity.Credential, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	apollo := strings.TrimSpace(in.ApolloKey)
	notion := strings.TrimSpace(in.NotionToken)
	dbID := strings.TrimSpace(in.NotionDatabaseID)
	if apollo == "" || notion == "" || dbID == "" {
		return nil, ErrMissingKeys
	}
	provider, err := normalizeAIProvider(in.AIProvider)
	if err != nil {
		return nil, err
	}

	if _, err := v.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailRegistered
	} else if !errors.Is(err, repository.ErrCredentialNotFound) {
		return nil, err
	}

	hash, err := v.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	cred := &entity.Credential{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		AIProvider:   provider,
		CreatedAt:    v.now().UTC(),
	}
	if cred.EncryptedApolloKey, err = v.cipher.Encrypt(apollo); err != nil {
		return nil, err
	}
	if cred.EncryptedNotionToken, err = v.cipher.Encrypt(notion); err != nil {
		return nil, err
	}
	if cred.EncryptedNotionDatabaseID, err = v.cipher.Encrypt(dbID); err != nil {
		return nil, err
	}
	if ai := strings.TrimSpace(in.AIKey); ai != "" {
		enc, err := v.cipher.Encrypt(ai)
		if err != nil {
			return nil, err
		}
		cred.EncryptedAIKey = &enc
	}

	if err := v.repo.Create(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return nil, ErrEmailRegistered
		}
		return nil, err
	}
	return cred, nil
}

// Login verifies the password, decrypts the keys and records the login time.
func (v *Vault) Login(ctx context.Context, email, password string) (*entity.ProviderCredentials, error) {
	cred, err := v.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !v.hasher.Verify(password, cred.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	keys, err := v.decrypt(cred)
	if err != nil {
		return nil, err
	}
	if err := v.repo.TouchLogin(ctx, cred.ID, v.now().UTC()); err != nil {
		return nil, err
	}
	return keys, nil
}

// Credentials decrypts the keys of an authenticated account.
func (v *Vault) Credentials(ctx context.Context, userID uuid.UUID) (*entity.ProviderCredentials, error) {
	cred, err := v.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return v.decrypt(cred)
}

// UpdateKeys re-encrypts only the supplied keys.
func (v *Vault) UpdateKeys(ctx context.Context, userID uuid.UUID, change KeyChange) error {
	var update repository.KeyUpdate
	encrypt := func(plain string) (*string, error) {
		plain = strings.TrimSpace(plain)
		if plain == "" {
			return nil, nil
		}
		enc, err := v.cipher.Encrypt(plain)
		if err != nil {
			return nil, err
		}
		return &enc, nil
	}

	var err error
	if update.EncryptedApolloKey, err = encrypt(change.ApolloKey); err != nil {
		return err
	}
	if update.EncryptedNotionToken, err = encrypt(change.NotionToken); err != nil {
		return err
	}
	if update.EncryptedNotionDatabaseID, err = encrypt(change.NotionDatabaseID); err != nil {
		return err
	}
	if update.EncryptedAIKey, err = encrypt(change.AIKey); err != nil {
		return err
	}
	if strings.TrimSpace(change.AIProvider) != "" {
		provider, err := normalizeAIProvider(change.AIProvider)
		if err != nil {
			return err
		}
		update.AIProvider = &provider
	}
	if update.Empty() {
		return ErrMissingKeys
	}
	if err := v.repo.UpdateKeys(ctx, userID, update); err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (v *Vault) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	cred, err := v.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if !v.hasher.Verify(current, cred.PasswordHash) {
		return ErrWrongPassword
	}
	if len(next) < minPasswordLength {
		return ErrNewPasswordTooShort
	}
	hash, err := v.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := v.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

// DeleteAccount removes the account row.
func (v *Vault) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := v.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}

func (v *Vault) decrypt(cred *entity.Credential) (*entity.ProviderCredentials, error) {
	out := &entity.ProviderCredentials{UserID: cred.ID, Email: cred.Email, AIProvider: cred.AIProvider}
	var err error
	if out.ApolloKey, err = v.cipher.Decrypt(cred.EncryptedApolloKey); err != nil {
		return nil, err
	}
	if out.NotionToken, err = v.cipher.Decrypt(cred.EncryptedNotionToken); err != nil {
		return nil, err
	}
	if out.NotionDatabaseID, err = v.cipher.Decrypt(cred.EncryptedNotionDatabaseID); err != nil {
		return nil, err
	}
	if cred.EncryptedAIKey != nil {
		if out.AIKey, err = v.cipher.Decrypt(*cred.EncryptedAIKey); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeAIProvider(raw string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(raw)); p {
	case "":
		return defaultAIProvider, nil
	case "openai", "gemini":
		return p, nil
	default:
		return "", ErrUnknownAIProvider
	}
}
