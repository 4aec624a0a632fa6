package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages loaded providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderClient
	configs   map[string]*ProviderConfig
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]ProviderClient),
		configs:   make(map[string]*ProviderConfig),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(name string, provider ProviderClient, config *ProviderConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers[name] = provider
	r.configs[name] = config

	return nil
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (ProviderClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return provider, nil
}

// List returns all registered provider names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Select returns the first registered provider in preference order, or the
// first by name when no preferred provider is registered
func (r *Registry) Select(preference []string) (ProviderClient, error) {
	for _, name := range preference {
		if p, err := r.Get(name); err == nil {
			return p, nil
		}
	}
	names := r.List()
	if len(names) == 0 {
		return nil, fmt.Errorf("no providers registered")
	}
	return r.Get(names[0])
}

// CloseAll closes all registered providers
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, provider := range r.providers {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %s: %w", name, err))
		}
	}

	r.providers = make(map[string]ProviderClient)
	r.configs = make(map[string]*ProviderConfig)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing providers: %v", errs)
	}

	return nil
}

// LoadFromConfig creates and registers a provider from configuration.
// Disabled providers are skipped.
func (r *Registry) LoadFromConfig(config *ProviderConfig) error {
	if config.Name == "" {
		return fmt.Errorf("provider name is required")
	}

	if !config.Enabled {
		return nil
	}

	provider, err := NewProvider(config)
	if err != nil {
		return fmt.Errorf("failed to create provider %s: %w", config.Name, err)
	}

	return r.Register(config.Name, provider, config)
}

// NewProvider creates the client for one provider configuration
func NewProvider(config *ProviderConfig) (ProviderClient, error) {
	if config.Type != ProviderTypeAPI {
		return nil, fmt.Errorf("unknown provider type: %s", config.Type)
	}
	switch config.Name {
	case "anthropic":
		return NewAnthropicProvider(config)
	case "openai":
		return NewOpenAIProvider(config)
	default:
		return nil, fmt.Errorf("unknown API provider: %s", config.Name)
	}
}

// LoadRegistryFromProvidersConfig loads every enabled provider. Providers
// that fail to load are reported through skipped and left out.
func LoadRegistryFromProvidersConfig(config *ProvidersConfig, skipped func(name string, err error)) (*Registry, error) {
	registry := NewRegistry()

	for i := range config.Providers {
		providerConfig := &config.Providers[i]
		if err := registry.LoadFromConfig(providerConfig); err != nil {
			if skipped != nil {
				skipped(providerConfig.Name, err)
			}
			continue
		}
	}

	if len(registry.List()) == 0 {
		return nil, fmt.Errorf("no providers loaded successfully")
	}

	return registry, nil
}
