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

// PixabayClient searches the Pixabay photo API.
type PixabayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ImageSearcher = (*PixabayClient)(nil)

// NewPixabayClient wires the API key; baseURL is overridable for tests.
func NewPixabayClient(apiKey, baseURL string) *PixabayClient {
	if baseURL == "" {
		baseURL = "https://pixabay.com"
	}
	return &PixabayClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

// Name identifies the provider inside the registry.
func (c *PixabayClient) Name() string {
	return "pixabay"
}

// SearchImages returns horizontal photo candidates for the query.
func (c *PixabayClient) SearchImages(ctx context.Context, query string, count int) ([]domain.ImageResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("pixabay API key is missing")
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", query)
	params.Set("image_type", "photo")
	params.Set("per_page", strconv.Itoa(count))
	params.Set("orientation", "horizontal")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	raw, err := doSearch(c.httpClient, req, "pixabay")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Hits []struct {
			LargeImageURL string `json:"largeImageURL"`
			Tags          string `json:"tags"`
			User          string `json:"user"`
			UserID        int64  `json:"user_id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode pixabay response: %w", err)
	}

	results := make([]domain.ImageResult, 0, len(payload.Hits))
	for _, img := range payload.Hits {
		alt := img.Tags
		if alt == "" {
			alt = query
		}
		results = append(results, domain.ImageResult{
			URL:             img.LargeImageURL,
			AltText:         alt,
			Photographer:    img.User,
			PhotographerURL: fmt.Sprintf("https://pixabay.com/users/%s-%d/", img.User, img.UserID),
		})
	}
	return results, nil
}
