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
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o-mini"
)

// OpenAIProvider implements the ProviderClient interface for the OpenAI chat
// completions API
type OpenAIProvider struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	config    *ProviderConfig
	model     string
	maxTokens int
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
	Error   *openAIError   `json:"error,omitempty"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAIProvider creates a new OpenAI provider instance
func NewOpenAIProvider(config *ProviderConfig) (*OpenAIProvider, error) {
	apiKey, ok := config.stringOption("api_key")
	if !ok {
		return nil, fmt.Errorf("api_key not found in provider config")
	}

	baseURL, ok := config.stringOption("base_url")
	if !ok {
		baseURL = openAIDefaultBaseURL
	}

	model, ok := config.stringOption("model")
	if !ok {
		model = openAIDefaultModel
	}

	maxTokens, _ := config.intOption("max_tokens")

	return &OpenAIProvider{
		apiKey:    apiKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 120 * time.Second},
		config:    config,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Generate implements ProviderClient.Generate
func (p *OpenAIProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	startTime := time.Now()

	reqBody, err := json.Marshal(p.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

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
		var errResp openAIResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, &HTTPError{Provider: p.config.Name, StatusCode: httpResp.StatusCode, Message: errResp.Error.Message}
		}
		return nil, &HTTPError{Provider: p.config.Name, StatusCode: httpResp.StatusCode, Message: string(respBody)}
	}

	var oaiResp openAIResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	content := ""
	finishReason := ""
	if len(oaiResp.Choices) > 0 {
		content = oaiResp.Choices[0].Message.Content
		finishReason = oaiResp.Choices[0].FinishReason
	}

	return &GenerateResponse{
		Content:      content,
		InputTokens:  oaiResp.Usage.PromptTokens,
		OutputTokens: oaiResp.Usage.CompletionTokens,
		Model:        oaiResp.Model,
		Latency:      time.Since(startTime),
		FinishReason: finishReason,
		Provider:     p.config.Name,
	}, nil
}

// buildRequest constructs an OpenAI API request from our GenerateRequest
func (p *OpenAIProvider) buildRequest(req *GenerateRequest) *openAIRequest {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	messages := make([]openAIMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	return &openAIRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	}
}

// GetInfo implements ProviderClient.GetInfo
func (p *OpenAIProvider) GetInfo() *ProviderInfo {
	return &ProviderInfo{
		Name:        p.config.Name,
		Model:       p.model,
		Type:        ProviderTypeAPI,
		Description: fmt.Sprintf("OpenAI chat completions provider: %s", p.baseURL),
	}
}

// IsAvailable implements ProviderClient.IsAvailable
func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Close implements ProviderClient.Close
func (p *OpenAIProvider) Close() error {
	return nil
}
