package dto

import "github.com/octobees/contact-enricher/internal/entity"

// StrategyRequest asks the language model for targeting filters.
type StrategyRequest struct {
	Goal     string `json:"goal"`
	Industry string `json:"industry,omitempty"`
}

// StrategyResponse returns the generated filters with the model that produced them.
type StrategyResponse struct {
	Model    string                   `json:"model"`
	Strategy entity.TargetingStrategy `json:"strategy"`
}
