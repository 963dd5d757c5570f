package entity

import (
	"time"

	"github.com/google/uuid"
)

// Credential is one persisted account row. Provider keys are stored encrypted.
type Credential struct {
	ID                        uuid.UUID  `json:"id"`
	Email                     string     `json:"email"`
	PasswordHash              string     `json:"-" masq:"secret"`
	EncryptedApolloKey        string     `json:"-"`
	EncryptedNotionToken      string     `json:"-"`
	EncryptedNotionDatabaseID string     `json:"-"`
	EncryptedAIKey            *string    `json:"-"`
	AIProvider                string     `json:"ai_provider"`
	CreatedAt                 time.Time  `json:"created_at"`
	LastLogin                 *time.Time `json:"last_login,omitempty"`
}

// ProviderCredentials are the decrypted per-user keys used to drive a session.
type ProviderCredentials struct {
	UserID           uuid.UUID `json:"user_id"`
	Email            string    `json:"email"`
	ApolloKey        string    `json:"-" masq:"secret"`
	NotionToken      string    `json:"-" masq:"secret"`
	NotionDatabaseID string    `json:"notion_database_id"`
	AIKey            string    `json:"-" masq:"secret"`
	AIProvider       string    `json:"ai_provider"`
}
