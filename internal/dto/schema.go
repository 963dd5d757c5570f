package dto

// SchemaSetupRequest controls whether optional properties are added alongside required ones.
type SchemaSetupRequest struct {
	IncludeOptional bool `json:"include_optional"`
}
