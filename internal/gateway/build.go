package gateway

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/metrics"
	"github.com/felixgeelhaar/pmagent/internal/provider"
)

// Settings selects and tunes the provider behind a gateway
type Settings struct {
	Provider      string
	Model         string
	Timeout       time.Duration
	ProvidersFile string
}

// Build returns the Generator described by s. With a providers file, the
// provider named by s.Provider (or the file's preference order) is used.
// Without one, a single provider is synthesized from s and the provider's
// API key variable. When no usable provider exists the result is Offline
// and a warning is logged; Build only fails on an unreadable providers file.
func Build(s Settings, logger *log.Logger, m *metrics.Metrics) (Generator, error) {
	if logger == nil {
		logger = log.Nop()
	}
	opts := []Option{WithTimeout(s.Timeout), WithLogger(logger), WithMetrics(m)}

	if s.ProvidersFile != "" {
		cfg, err := provider.LoadProvidersConfig(s.ProvidersFile)
		if err != nil {
			return nil, fmt.Errorf("load providers file: %w", err)
		}
		registry, err := provider.LoadRegistryFromProvidersConfig(cfg, func(name string, err error) {
			logger.Warn("skipping provider", "provider", name, "error", err)
		})
		if err != nil {
			logger.Warn("no text generation provider available, using offline fallbacks", "error", err)
			return Offline{Provider: s.Provider}, nil
		}
		preference := cfg.Preference
		if s.Provider != "" {
			preference = append([]string{s.Provider}, preference...)
		}
		client, err := registry.Select(preference)
		if err != nil {
			return Offline{Provider: s.Provider}, nil
		}
		logger.Debug("text generation provider selected", "provider", client.GetInfo().Name, "model", client.GetInfo().Model)
		return NewProviderGateway(client, opts...), nil
	}

	name := s.Provider
	if name == "" {
		name = "anthropic"
	}
	client, err := provider.NewProvider(provider.DefaultProviderConfig(name, s.Model))
	if err != nil {
		logger.Warn("no text generation provider available, using offline fallbacks",
			"provider", name, "hint", "set "+provider.APIKeyEnv(name), "error", err)
		return Offline{Provider: name}, nil
	}
	return NewProviderGateway(client, opts...), nil
}
