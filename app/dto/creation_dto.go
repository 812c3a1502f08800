// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// SubmitCreationRequest represents a new beverage creation submission
type SubmitCreationRequest struct {
	Name             string   `json:"name" validate:"required,creation_name"`
	PrimaryFlavors   []string `json:"primary_flavors" validate:"required,min=1,max=3,dive,required"`
	Accent           *string  `json:"accent,omitempty" validate:"omitempty,oneof=none cola energy eistee"`
	BaseType         string   `json:"base_type" validate:"required,oneof=normal eistee"`
	Variant          string   `json:"variant" validate:"required,oneof=original light"`
	Email            string   `json:"email" validate:"required,email,max=255"`
	MarketingConsent bool     `json:"marketing_consent"`
}

// SubmitCreationResponse represents the response after a successful submission
type SubmitCreationResponse struct {
	Message  string            `json:"message"`
	Creation *CreationResponse `json:"creation"`
}

// CreationResponse represents a creation in API responses
type CreationResponse struct {
	UUID           string    `json:"uuid"`
	Name           string    `json:"name"`
	PrimaryFlavors []string  `json:"primary_flavors"`
	FlavorEmojis   []string  `json:"flavor_emojis"`
	Accent         string    `json:"accent"`
	BaseType       string    `json:"base_type"`
	Variant        string    `json:"variant"`
	ImageURL       *string   `json:"image_url,omitempty"`
	VotesCount     int       `json:"votes_count"`
	StandardMatch  string    `json:"standard_match"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListCreationsRequest represents the leaderboard query parameters
type ListCreationsRequest struct {
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset  int    `query:"offset" validate:"omitempty,min=0"`
	Flavor  string `query:"flavor" validate:"omitempty,max=50"`
	Accent  string `query:"accent" validate:"omitempty,oneof=none cola energy eistee"`
	Variant string `query:"variant" validate:"omitempty,oneof=original light"`
}

// ListCreationsResponse represents the leaderboard page
type ListCreationsResponse struct {
	Creations []CreationResponse `json:"creations"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// DeleteCreationRequest represents a creation deletion request
type DeleteCreationRequest struct {
	UUID           string  `json:"-"`
	RequesterEmail *string `json:"requester_email,omitempty" validate:"omitempty,email"`
}

// DeleteCreationResponse represents the response after deleting a creation
type DeleteCreationResponse struct {
	Message string `json:"message"`
}

// CatalogResponse lists the selectable builder options
type CatalogResponse struct {
	Fruits   []CatalogOption `json:"fruits"`
	Extras   []CatalogOption `json:"extras"`
	Accents  []CatalogOption `json:"accents"`
	Variants []CatalogOption `json:"variants"`
}

// CatalogOption is a single selectable option in the catalog
type CatalogOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji,omitempty"`
	Description string `json:"description,omitempty"`
}
