package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"autoblogger/internal/domain"
	"autoblogger/internal/ports"
)

// PexelsClient searches the Pexels photo API.
type PexelsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ImageSearcher = (*PexelsClient)(nil)

// NewPexelsClient wires the API key; baseURL is overridable for tests.
func NewPexelsClient(apiKey, baseURL string) *PexelsClient {
	if baseURL == "" {
		baseURL = "https://api.pexels.com"
	}
	return &PexelsClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

// Name identifies the provider inside the registry.
func (c *PexelsClient) Name() string {
	return "pexels"
}

// SearchImages returns landscape photo candidates for the query.
func (c *PexelsClient) SearchImages(ctx context.Context, query string, count int) ([]domain.ImageResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("pexels API key is missing")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(count))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	raw, err := doSearch(c.httpClient, req, "pexels")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Error  string `json:"error"`
		Photos []struct {
			Src struct {
				Large string `json:"large"`
			} `json:"src"`
			Alt             string `json:"alt"`
			Photographer    string `json:"photographer"`
			PhotographerURL string `json:"photographer_url"`
		} `json:"photos"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode pexels response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("pexels error: %s", payload.Error)
	}

	results := make([]domain.ImageResult, 0, len(payload.Photos))
	for _, img := range payload.Photos {
		alt := img.Alt
		if alt == "" {
			alt = query
		}
		results = append(results, domain.ImageResult{
			URL:             img.Src.Large,
			AltText:         alt,
			Photographer:    img.Photographer,
			PhotographerURL: img.PhotographerURL,
		})
	}
	return results, nil
}
