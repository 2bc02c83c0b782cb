package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1"
	defaultModel       = "openai/gpt-4o"
	defaultTemperature = 0.1
	defaultHTTPTimeout = 60 * time.Second
)

var (
	ErrMissingAPIKey = errors.New("openrouter api key is required")
	ErrNoClient      = errors.New("completion client not configured")
)

// LLMClient is the minimal completion surface the agents need. Each agent
// is a stateless structured-in, structured-out function over it.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenRouterClient talks to the OpenRouter chat-completions API
type OpenRouterClient struct {
	httpClient  *http.Client
	logger      *slog.Logger
	apiKey      string
	baseURL     string
	model       string
	temperature float64
}

// ClientOption configures an OpenRouterClient
type ClientOption func(*OpenRouterClient)

// WithModel overrides the default model
func WithModel(model string) ClientOption {
	return func(c *OpenRouterClient) { c.model = model }
}

// WithBaseURL overrides the API endpoint, used by tests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *OpenRouterClient) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *OpenRouterClient) { c.httpClient = httpClient }
}

// WithTemperature overrides the sampling temperature
func WithTemperature(temperature float64) ClientOption {
	return func(c *OpenRouterClient) { c.temperature = temperature }
}

// NewOpenRouterClient creates a client for the OpenRouter API
func NewOpenRouterClient(apiKey string, logger *slog.Logger, opts ...ClientOption) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &OpenRouterClient{
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		logger:      logger,
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Complete sends a system+user message pair and returns the raw assistant
// content. The low default temperature keeps structured output stable.
func (c *OpenRouterClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &CompletionError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	c.logger.Debug("completion finished",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds())

	return parsed.Choices[0].Message.Content, nil
}

// CompletionError is a non-200 response from the completion endpoint
type CompletionError struct {
	StatusCode int
	Body       string
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion request failed with status %d", e.StatusCode)
}

// Retryable reports whether the request is worth repeating. Rate limits
// and server errors are transient; auth and validation errors are not.
func (e *CompletionError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
