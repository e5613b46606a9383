package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"autoblogger/internal/config"
	"autoblogger/internal/ports"
)

// GeminiClient talks to the Google Generative Language API, which has its
// own request shape: no system role, the key rides the query string.
type GeminiClient struct {
	baseURL      string
	apiKey       string
	defaultModel string
	httpClient   *http.Client
}

var _ ports.ContentProvider = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.ProviderConfig) *GeminiClient {
	return &GeminiClient{
		baseURL:      strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}
}

// Name identifies the provider inside the registry.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// GenerateContent folds the system prompt into the single user part and
// returns the first candidate text.
func (c *GeminiClient) GenerateContent(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini API key is missing")
	}
	if model == "" {
		model = c.defaultModel
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{
				{"text": systemPrompt + "\n\nTask: " + userPrompt},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	var payload struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode gemini response (%s): %w", resp.Status, err)
	}
	if payload.Error != nil {
		return "", fmt.Errorf("gemini error: %s", payload.Error.Message)
	}
	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	text := payload.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}
