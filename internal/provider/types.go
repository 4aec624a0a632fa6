package provider

import "time"

// GenerateRequest contains all parameters for generating a response
type GenerateRequest struct {
	// Prompt is the main input text for the model
	Prompt string `json:"prompt"`

	// SystemPrompt sets the system-level instructions
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens limits the maximum response length.
	// Set to 0 to use provider default
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float64 `json:"temperature,omitempty"`

	// Model overrides the provider's default model
	Model string `json:"model,omitempty"`

	// Metadata for tracking and debugging
	Metadata map[string]string `json:"metadata,omitempty"`
}

// GenerateResponse contains the model's response
type GenerateResponse struct {
	// Content is the generated text
	Content string `json:"content"`

	// InputTokens is tokens in the prompt
	InputTokens int `json:"input_tokens,omitempty"`

	// OutputTokens is tokens in the response
	OutputTokens int `json:"output_tokens,omitempty"`

	// Model is the model that generated the response
	Model string `json:"model"`

	// Latency is how long the generation took
	Latency time.Duration `json:"latency"`

	// FinishReason explains why generation stopped
	FinishReason string `json:"finish_reason"`

	// Provider is the name of the provider that handled this request
	Provider string `json:"provider"`
}

// TokensUsed returns input plus output tokens
func (r *GenerateResponse) TokensUsed() int {
	return r.InputTokens + r.OutputTokens
}

// ProviderConfig represents one entry of providers.yaml
type ProviderConfig struct {
	// Name is the provider identifier
	Name string `yaml:"name" json:"name"`

	// Type is the provider implementation type
	Type ProviderType `yaml:"type" json:"type"`

	// Enabled controls if this provider is active
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Config contains provider-specific configuration: api_key, base_url,
	// model, max_tokens
	Config map[string]interface{} `yaml:"config" json:"config"`
}

// stringOption returns a non-empty string option from c.Config
func (c *ProviderConfig) stringOption(key string) (string, bool) {
	v, ok := c.Config[key].(string)
	return v, ok && v != ""
}

// intOption returns an integer option from c.Config. YAML decodes integers
// as int; JSON decodes them as float64.
func (c *ProviderConfig) intOption(key string) (int, bool) {
	switch v := c.Config[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
