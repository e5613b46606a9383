package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"autoblogger/internal/domain"
	"autoblogger/internal/ports"
)

const searchTimeout = 60 * time.Second

// UnsplashClient searches the Unsplash photo API.
type UnsplashClient struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

var _ ports.ImageSearcher = (*UnsplashClient)(nil)

// NewUnsplashClient wires the access key; baseURL is overridable for tests.
func NewUnsplashClient(accessKey, baseURL string) *UnsplashClient {
	if baseURL == "" {
		baseURL = "https://api.unsplash.com"
	}
	return &UnsplashClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		accessKey:  accessKey,
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

// Name identifies the provider inside the registry.
func (c *UnsplashClient) Name() string {
	return "unsplash"
}

// SearchImages returns landscape photo candidates for the query.
func (c *UnsplashClient) SearchImages(ctx context.Context, query string, count int) ([]domain.ImageResult, error) {
	if c.accessKey == "" {
		return nil, fmt.Errorf("unsplash access key is missing")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(count))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	raw, err := doSearch(c.httpClient, req, "unsplash")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Errors  []string `json:"errors"`
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
			AltDescription string `json:"alt_description"`
			User           struct {
				Name  string `json:"name"`
				Links struct {
					HTML string `json:"html"`
				} `json:"links"`
			} `json:"user"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode unsplash response: %w", err)
	}
	if len(payload.Errors) > 0 {
		return nil, fmt.Errorf("unsplash error: %s", strings.Join(payload.Errors, ", "))
	}

	results := make([]domain.ImageResult, 0, len(payload.Results))
	for _, img := range payload.Results {
		alt := img.AltDescription
		if alt == "" {
			alt = query
		}
		results = append(results, domain.ImageResult{
			URL:          img.URLs.Regular,
			AltText:      alt,
			Photographer: img.User.Name,
			// Unsplash API guidelines require the referral parameters.
			PhotographerURL: img.User.Links.HTML + "?utm_source=autoblogger&utm_medium=referral",
		})
	}
	return results, nil
}

func doSearch(client *http.Client, req *http.Request, provider string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s: %s", provider, resp.Status, strings.TrimSpace(string(raw[:min(len(raw), 256)])))
	}
	return raw, nil
}
