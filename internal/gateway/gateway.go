// Package gateway turns prompts into text through a configured LLM provider.
// Every call is bounded by a timeout, and failures come back as GATEWAY-*
// coded errors that callers replace with fallback content.
package gateway

import (
	"context"
	"errors"
	"time"

	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/metrics"
	"github.com/felixgeelhaar/pmagent/internal/provider"
)

// DefaultTimeout bounds a single Generate call
const DefaultTimeout = 30 * time.Second

// Generator produces free text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type purposeKey struct{}

// WithPurpose labels the calls made with ctx, e.g. "sprint_goals". The label
// shows up in logs and metrics.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "generate"
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "generate"
}

// ProviderGateway adapts a provider.ProviderClient to Generator
type ProviderGateway struct {
	client  provider.ProviderClient
	timeout time.Duration
	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures a ProviderGateway
type Option func(*ProviderGateway)

// WithTimeout sets the per-call timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(g *ProviderGateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(g *ProviderGateway) { g.logger = logger }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *ProviderGateway) { g.metrics = m }
}

// NewProviderGateway wraps client
func NewProviderGateway(client provider.ProviderClient, opts ...Option) *ProviderGateway {
	g := &ProviderGateway{
		client:  client,
		timeout: DefaultTimeout,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements Generator
func (g *ProviderGateway) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	purpose := PurposeFrom(ctx)
	info := g.client.GetInfo()
	start := time.Now()

	text, err := g.generate(ctx, prompt, maxTokens)

	code := string(agenterrors.CodeOf(err))
	g.metrics.RecordGatewayCall(purpose, time.Since(start), code)
	if err != nil {
		g.logger.WithError(err).Warn("text generation failed",
			"purpose", purpose, "provider", info.Name, "duration", time.Since(start))
		return "", err
	}

	g.logger.Debug("text generation completed",
		"purpose", purpose, "provider", info.Name, "duration", time.Since(start), "chars", len(text))
	return text, nil
}

func (g *ProviderGateway) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	info := g.client.GetInfo()
	if !g.client.IsAvailable() {
		return "", agenterrors.NewGatewayUnavailableError(info.Name)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Generate(ctx, &provider.GenerateRequest{
		Prompt:    prompt,
		MaxTokens: maxTokens,
		Metadata:  map[string]string{"purpose": PurposeFrom(ctx)},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", agenterrors.Wrap(agenterrors.ErrCodeGatewayTimeout,
				"text generation timed out after "+g.timeout.String(), err).
				WithSuggestion("Increase gateway.timeout in config/agent_config.json")
		}
		return "", agenterrors.Wrap(agenterrors.ErrCodeGatewayRequest, "text generation request failed", err).
			WithSuggestion("Check network connectivity and the provider API key")
	}
	if resp.Content == "" {
		return "", agenterrors.New(agenterrors.ErrCodeGatewayMalformed, "provider returned an empty response")
	}
	return resp.Content, nil
}

// Offline is a Generator for when no provider is configured. Every call
// fails with GATEWAY-001 so callers use their fallbacks.
type Offline struct {
	Provider string
}

// Generate implements Generator
func (o Offline) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", agenterrors.NewGatewayUnavailableError(o.Provider)
}
