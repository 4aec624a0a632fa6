package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicDefaultModel   = "claude-3-5-sonnet-20241022"
	anthropicAPIVersion     = "2023-06-01"
)

// AnthropicProvider implements the ProviderClient interface for the Anthropic
// Messages API
type AnthropicProvider struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	config    *ProviderConfig
	model     string
	maxTokens int
}

// Anthropic API request/response structures
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason,omitempty"`
	Usage      anthropicUsage     `json:"usage"`
	Error      *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewAnthropicProvider creates a new Anthropic provider instance
func NewAnthropicProvider(config *ProviderConfig) (*AnthropicProvider, error) {
	apiKey, ok := config.stringOption("api_key")
	if !ok {
		return nil, fmt.Errorf("api_key not found in provider config")
	}

	baseURL, ok := config.stringOption("base_url")
	if !ok {
		baseURL = anthropicDefaultBaseURL
	}

	model, ok := config.stringOption("model")
	if !ok {
		model = anthropicDefaultModel
	}

	// Anthropic requires max_tokens
	maxTokens, ok := config.intOption("max_tokens")
	if !ok || maxTokens <= 0 {
		maxTokens = 1024
	}

	return &AnthropicProvider{
		apiKey:    apiKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 120 * time.Second},
		config:    config,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Generate implements ProviderClient.Generate
func (p *AnthropicProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	startTime := time.Now()

	reqBody, err := json.Marshal(p.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Check for HTTP errors
	if httpResp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, &HTTPError{Provider: p.config.Name, StatusCode: httpResp.StatusCode, Message: errResp.Error.Message}
		}
		return nil, &HTTPError{Provider: p.config.Name, StatusCode: httpResp.StatusCode, Message: string(respBody)}
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(respBody, &anthResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	// Concatenate text blocks
	var content bytes.Buffer
	for _, block := range anthResp.Content {
		if block.Type == "" || block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &GenerateResponse{
		Content:      content.String(),
		InputTokens:  anthResp.Usage.InputTokens,
		OutputTokens: anthResp.Usage.OutputTokens,
		Model:        anthResp.Model,
		Latency:      time.Since(startTime),
		FinishReason: anthResp.StopReason,
		Provider:     p.config.Name,
	}, nil
}

// buildRequest constructs an Anthropic API request from our GenerateRequest
func (p *AnthropicProvider) buildRequest(req *GenerateRequest) *anthropicRequest {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	return &anthropicRequest{
		Model:       model,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		System:      req.SystemPrompt,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
}

// GetInfo implements ProviderClient.GetInfo
func (p *AnthropicProvider) GetInfo() *ProviderInfo {
	return &ProviderInfo{
		Name:        p.config.Name,
		Model:       p.model,
		Type:        ProviderTypeAPI,
		Description: fmt.Sprintf("Anthropic Messages API provider: %s", p.baseURL),
	}
}

// IsAvailable implements ProviderClient.IsAvailable
func (p *AnthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Close implements ProviderClient.Close
func (p *AnthropicProvider) Close() error {
	return nil
}
