package provider

import (
	"context"
)

// ProviderClient is the interface every text generation backend implements.
type ProviderClient interface {
	// Generate sends a prompt and returns the complete response.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// GetInfo returns metadata about the provider
	GetInfo() *ProviderInfo

	// IsAvailable reports whether the provider has what it needs to handle
	// requests (for API providers, an API key).
	IsAvailable() bool

	// Close cleans up any resources used by the provider.
	Close() error
}

// ProviderInfo contains metadata about a provider
type ProviderInfo struct {
	// Name is the provider identifier (e.g., "anthropic", "openai")
	Name string

	// Model is the default model requests are sent to
	Model string

	// Type is the provider implementation type
	Type ProviderType

	// Description is a human-readable description of the provider
	Description string
}

// ProviderType represents the implementation type of a provider
type ProviderType string

const (
	// ProviderTypeAPI is an HTTP API client
	ProviderTypeAPI ProviderType = "api"
)
