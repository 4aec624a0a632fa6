package provider

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProvidersConfig represents the complete providers.yaml configuration
type ProvidersConfig struct {
	Providers []ProviderConfig `yaml:"providers"`

	// Preference orders provider names; the first enabled, loadable one wins
	Preference []string `yaml:"preference,omitempty"`
}

// API key environment variables for the built-in providers
var apiKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
}

// APIKeyEnv returns the environment variable holding the API key of the
// named built-in provider
func APIKeyEnv(name string) string {
	if env, ok := apiKeyEnv[name]; ok {
		return env
	}
	return strings.ToUpper(name) + "_API_KEY"
}

// LoadProvidersConfig loads provider configuration from a YAML file.
// ${VAR} references are expanded from the environment.
func LoadProvidersConfig(path string) (*ProvidersConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the config
	configStr := os.ExpandEnv(string(data))

	var config ProvidersConfig
	if err := yaml.Unmarshal([]byte(configStr), &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := ValidateProvidersConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// ValidateProvidersConfig validates a providers configuration
func ValidateProvidersConfig(config *ProvidersConfig) error {
	if len(config.Providers) == 0 {
		return fmt.Errorf("no providers configured")
	}

	hasEnabled := false
	names := make(map[string]bool, len(config.Providers))
	for i, p := range config.Providers {
		if err := ValidateProviderConfig(&p); err != nil {
			return fmt.Errorf("provider %d (%s): %w", i, p.Name, err)
		}
		if names[p.Name] {
			return fmt.Errorf("provider %d: duplicate name %s", i, p.Name)
		}
		names[p.Name] = true
		if p.Enabled {
			hasEnabled = true
		}
	}

	if !hasEnabled {
		return fmt.Errorf("at least one provider must be enabled")
	}

	for _, name := range config.Preference {
		if !names[name] {
			return fmt.Errorf("preference names unknown provider %s", name)
		}
	}

	return nil
}

// ValidateProviderConfig validates a single provider configuration
func ValidateProviderConfig(config *ProviderConfig) error {
	if config.Name == "" {
		return fmt.Errorf("name is required")
	}

	if config.Type == "" {
		return fmt.Errorf("type is required")
	}

	if config.Type != ProviderTypeAPI {
		return fmt.Errorf("invalid provider type: %s (must be api)", config.Type)
	}

	if _, ok := apiKeyEnv[config.Name]; !ok {
		return fmt.Errorf("unknown API provider: %s (must be anthropic or openai)", config.Name)
	}

	return nil
}

// SaveProvidersConfig saves provider configuration to a YAML file
func SaveProvidersConfig(config *ProvidersConfig, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// DefaultProviderConfig synthesizes a single provider entry from a name and
// model, reading the API key from the provider's environment variable
func DefaultProviderConfig(name, model string) *ProviderConfig {
	return &ProviderConfig{
		Name:    name,
		Type:    ProviderTypeAPI,
		Enabled: true,
		Config: map[string]interface{}{
			"api_key": os.Getenv(APIKeyEnv(name)),
			"model":   model,
		},
	}
}

// IsEnvVarSet checks if an environment variable is set and non-empty
func IsEnvVarSet(name string) bool {
	val := strings.TrimSpace(os.Getenv(name))
	return val != ""
}
