// Package gifs proxies GIF search to the Giphy API, falling back to
// deterministic mock results when no API key is configured.
package gifs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.giphy.com/v1/gifs"
	defaultLimit   = 20
	requestTimeout = 10 * time.Second
)

// ErrQueryRequired indicates a search was attempted without a query string.
var ErrQueryRequired = errors.New("gifs: search query required")

// Image is one rendition of a GIF.
type Image struct {
	URL    string `json:"url"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

// GIF is a single search result descriptor. URLs are embedded verbatim into
// messages; the server never inspects the media itself.
type GIF struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Images struct {
		FixedHeight Image `json:"fixed_height"`
		FixedWidth  Image `json:"fixed_width"`
		Original    Image `json:"original"`
		PreviewGif  Image `json:"preview_gif"`
	} `json:"images"`
}

// Result is the provider response shape passed through to clients.
type Result struct {
	Data       []GIF `json:"data"`
	Pagination struct {
		TotalCount int `json:"total_count"`
		Count      int `json:"count"`
		Offset     int `json:"offset"`
	} `json:"pagination"`
}

// ClientConfig configures the Giphy client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client performs GIF searches. Without an API key every call returns mock
// descriptors so local development needs no external account.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a Giphy client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Search queries GIFs matching q.
func (c *Client) Search(ctx context.Context, q string, limit, offset int) (Result, error) {
	if q == "" {
		return Result{}, ErrQueryRequired
	}
	if c.apiKey == "" {
		return mockResult(q), nil
	}
	query := url.Values{}
	query.Set("q", q)
	return c.fetch(ctx, "search", query, limit, offset)
}

// Trending returns the provider's trending GIFs.
func (c *Client) Trending(ctx context.Context, limit, offset int) (Result, error) {
	if c.apiKey == "" {
		return mockResult("trending"), nil
	}
	return c.fetch(ctx, "trending", url.Values{}, limit, offset)
}

func (c *Client) fetch(ctx context.Context, endpoint string, query url.Values, limit, offset int) (Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	query.Set("api_key", c.apiKey)
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("offset", fmt.Sprintf("%d", offset))
	query.Set("rating", "g")

	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return Result{}, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("giphy request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return Result{}, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("gifs: provider returned status %d", response.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return Result{}, err
	}
	return result, nil
}

var mockGifURLs = []string{
	"https://media.giphy.com/media/3o7abKhOpu0NwenH3O/giphy.gif",
	"https://media.giphy.com/media/xT0xeJpnrWC4XWblEk/giphy.gif",
	"https://media.giphy.com/media/l0MYt5jPR6QX5pnqM/giphy.gif",
	"https://media.giphy.com/media/26u4cqiYI30juCOGY/giphy.gif",
	"https://media.giphy.com/media/3oz8xIsloV7zOmt81G/giphy.gif",
}

func mockResult(query string) Result {
	var result Result
	for i, gifURL := range mockGifURLs {
		gif := GIF{
			ID:    fmt.Sprintf("mock-%d", i),
			Title: fmt.Sprintf("%s gif %d", query, i+1),
		}
		gif.Images.FixedHeight = Image{URL: gifURL, Width: "200", Height: "200"}
		gif.Images.FixedWidth = Image{URL: gifURL, Width: "200", Height: "200"}
		gif.Images.Original = Image{URL: gifURL, Width: "480", Height: "480"}
		gif.Images.PreviewGif = Image{URL: gifURL}
		result.Data = append(result.Data, gif)
	}
	result.Pagination.TotalCount = len(result.Data)
	result.Pagination.Count = len(result.Data)
	return result
}
