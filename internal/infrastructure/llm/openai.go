package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autoblogger/internal/config"
	"autoblogger/internal/ports"
)

// Generation calls can take a while on long articles.
const requestTimeout = 120 * time.Second

// OpenAIClient talks to OpenAI-compatible chat-completion APIs. DeepSeek
// exposes the same wire format, so it reuses this client under its own name.
type OpenAIClient struct {
	name         string
	endpoint     string
	apiKey       string
	defaultModel string
	httpClient   *http.Client
}

var _ ports.ContentProvider = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(name string, cfg config.ProviderConfig) *OpenAIClient {
	return &OpenAIClient{
		name:         name,
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}
}

// Name identifies the provider inside the registry.
func (c *OpenAIClient) Name() string {
	return c.name
}

// GenerateContent posts the prompt pair and returns the first choice text.
func (c *OpenAIClient) GenerateContent(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%s API key is missing", c.name)
	}
	if model == "" {
		model = c.defaultModel
	}

	body, err := json.Marshal(map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", c.name, err)
	}

	var payload struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode %s response (%s): %w", c.name, resp.Status, err)
	}
	if payload.Error != nil {
		return "", fmt.Errorf("%s error: %s", c.name, payload.Error.Message)
	}
	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty response from %s", c.name)
	}
	return payload.Choices[0].Message.Content, nil
}
