package dto

// UpdateKeysRequest rotates some or all of the stored service keys. Empty fields are kept.
type UpdateKeysRequest struct {
	ApolloKey        string `json:"apollo_api_key,omitempty" masq:"secret"`
	NotionToken      string `json:"notion_token,omitempty" masq:"secret"`
	NotionDatabaseID string `json:"notion_database_id,omitempty"`
	AIKey            string `json:"ai_api_key,omitempty" masq:"secret"`
	AIProvider       string `json:"ai_provider,omitempty"`
}

// ChangePasswordRequest replaces the account password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" masq:"secret"`
	NewPassword     string `json:"new_password" masq:"secret"`
}
