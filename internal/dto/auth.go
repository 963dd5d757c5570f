package dto

// RegisterRequest captures self-service registration with the account's service keys.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password" masq:"secret"`
	ApolloKey        string `json:"apollo_api_key" masq:"secret"`
	NotionToken      string `json:"notion_token" masq:"secret"`
	NotionDatabaseID string `json:"notion_database_id"`
	AIKey            string `json:"ai_api_key,omitempty" masq:"secret"`
	AIProvider       string `json:"ai_provider,omitempty"`
}

// LoginRequest captures credential input.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" masq:"secret"`
}

// LoginResponse contains the issued access token and the non-secret account settings.
type LoginResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Email            string `json:"email"`
	NotionDatabaseID string `json:"notion_database_id"`
	AIProvider       string `json:"ai_provider"`
	HasAIKey         bool   `json:"has_ai_key"`
}
