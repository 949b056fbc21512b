// Package price fetches token market prices from the Birdeye public API.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultEndpoint is the Birdeye public price API.
const DefaultEndpoint = "https://public-api.birdeye.so/public/price"

const defaultTimeout = 10 * time.Second

// Options configures the Birdeye client.
type Options struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// BirdeyeClient fetches spot prices for a mint.
type BirdeyeClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewBirdeyeClient creates a price client. An empty API key is allowed;
// Birdeye serves unauthenticated requests at a reduced rate.
func NewBirdeyeClient(opts Options) *BirdeyeClient {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &BirdeyeClient{endpoint: endpoint, apiKey: opts.APIKey, client: client}
}

type priceResponse struct {
	Data struct {
		Value float64 `json:"value"`
	} `json:"data"`
	Success bool `json:"success"`
}

// GetPrice returns the current price of the mint in the API's quote
// currency. Callers decide what to do when the price is unavailable.
func (c *BirdeyeClient) GetPrice(ctx context.Context, mint string) (float64, error) {
	u := fmt.Sprintf("%s?address=%s", c.endpoint, url.QueryEscape(mint))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("build price request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("price API status %d: %s", resp.StatusCode, body)
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}
	if !pr.Success {
		return 0, fmt.Errorf("price API reported failure for %s", mint)
	}
	if pr.Data.Value < 0 {
		return 0, fmt.Errorf("negative price %v for %s", pr.Data.Value, mint)
	}
	return pr.Data.Value, nil
}
