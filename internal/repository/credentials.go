package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/contact-enricher/internal/entity"
)

var (
	// ErrCredentialNotFound is returned when no account matches the lookup.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrEmailDuplicate is returned when an account already uses the email.
	ErrEmailDuplicate = errors.New("email already exists")
)

// KeyUpdate carries already-encrypted replacements. Nil fields are left unchanged.
type KeyUpdate struct {
	EncryptedApolloKey        *string
	EncryptedNotionToken      *string
	EncryptedNotionDatabaseID *string
	EncryptedAIKey            *string
	AIProvider                *string
}

// Empty reports whether the update changes nothing.
func (u KeyUpdate) Empty() bool {
	return u.EncryptedApolloKey == nil && u.EncryptedNotionToken == nil &&
		u.EncryptedNotionDatabaseID == nil && u.EncryptedAIKey == nil && u.AIProvider == nil
}

// CredentialRepository persists account rows keyed by lowercased email.
type CredentialRepository interface {
	Create(ctx context.Context, cred *entity.Credential) error
	FindByEmail(ctx context.Context, email string) (*entity.Credential, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Credential, error)
	UpdateKeys(ctx context.Context, id uuid.UUID, update KeyUpdate) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const credentialColumns = "id, email, password_hash, apollo_key_enc, notion_token_enc, notion_database_id_enc, ai_key_enc, ai_provider, created_at, last_login"

type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(row scanner) (*entity.Credential, error) {
	var c entity.Credential
	if err := row.Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.EncryptedApolloKey,
		&c.EncryptedNotionToken,
		&c.EncryptedNotionDatabaseID,
		&c.EncryptedAIKey,
		&c.AIProvider,
		&c.CreatedAt,
		&c.LastLogin,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func keyUpdateColumns(update KeyUpdate) map[string]any {
	set := map[string]any{}
	if update.EncryptedApolloKey != nil {
		set["apollo_key_enc"] = *update.EncryptedApolloKey
	}
	if update.EncryptedNotionToken != nil {
		set["notion_token_enc"] = *update.EncryptedNotionToken
	}
	if update.EncryptedNotionDatabaseID != nil {
		set["notion_database_id_enc"] = *update.EncryptedNotionDatabaseID
	}
	if update.EncryptedAIKey != nil {
		set["ai_key_enc"] = *update.EncryptedAIKey
	}
	if update.AIProvider != nil {
		set["ai_provider"] = *update.AIProvider
	}
	return set
}
