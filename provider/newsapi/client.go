package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/poiesic/newsimport/provider"
	"golang.org/x/sync/semaphore"
)

// maxErrorBody caps how much of a failed response is read for diagnostics.
const maxErrorBody = 4096

// Client implements provider.Provider and provider.SourceLister against the
// NewsAPI v2 HTTP API.
type Client struct {
	config     *provider.Config
	httpClient *http.Client
	inFlight   *semaphore.Weighted
	logger     *slog.Logger
}

var (
	_ provider.Provider     = (*Client)(nil)
	_ provider.SourceLister = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With("component", "newsapi-client")
		}
	}
}

// NewClient creates a NewsAPI client.
// The config is validated and normalized before use.
func NewClient(config *provider.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, provider.ErrAPIKeyRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		inFlight:   semaphore.NewWeighted(int64(config.MaxInFlight)),
		logger:     slog.Default().With("component", "newsapi-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchEverything searches the article archive asynchronously.
func (c *Client) FetchEverything(ctx context.Context, req *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	go c.fetchArticles(ctx, "everything", articleParams(req), onSuccess, onFailure)
}

// FetchTopHeadlines queries top headlines asynchronously.
func (c *Client) FetchTopHeadlines(ctx context.Context, req *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	go c.fetchArticles(ctx, "top-headlines", articleParams(req), onSuccess, onFailure)
}

// FetchSources lists known sources asynchronously.
func (c *Client) FetchSources(ctx context.Context, req *provider.SourcesRequest, onSuccess func(*provider.SourcesResponse), onFailure provider.FailureFunc) {
	params := url.Values{}
	if req != nil {
		setIfNotEmpty(params, "category", req.Category)
		setIfNotEmpty(params, "language", req.Language)
		setIfNotEmpty(params, "country", req.Country)
	}

	go func() {
		var resp provider.SourcesResponse
		if err := c.get(ctx, "top-headlines/sources", params, &resp); err != nil {
			onFailure(err)
			return
		}
		onSuccess(&resp)
	}()
}

func (c *Client) fetchArticles(ctx context.Context, endpoint string, params url.Values, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	var resp provider.Response
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		c.logger.Debug("request failed", "endpoint", endpoint, "err", err)
		onFailure(err)
		return
	}
	c.logger.Debug("request succeeded", "endpoint", endpoint, "articles", len(resp.Articles), "total", resp.TotalResults)
	onSuccess(&resp)
}

// get performs one bounded request. The in-flight slot is released before
// the caller runs its continuation.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.inFlight.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("newsapi %s: %w", endpoint, err)
	}
	defer c.inFlight.Release(1)

	u := c.config.BaseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("newsapi %s: failed to create request: %w", endpoint, err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("newsapi %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(endpoint, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("newsapi %s: failed to decode response: %w", endpoint, err)
	}
	return nil
}

// APIError is a structured error returned by the provider.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("newsapi: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("newsapi: %s: %s", e.Code, e.Message)
}

func decodeAPIError(endpoint string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	_ = json.Unmarshal(body, apiErr)
	return fmt.Errorf("newsapi %s: %w", endpoint, apiErr)
}

func articleParams(req *provider.Request) url.Values {
	params := url.Values{}
	if req == nil {
		return params
	}
	setIfNotEmpty(params, "q", req.Q)
	setIfNotEmpty(params, "language", req.Language)
	setIfNotEmpty(params, "sources", req.Sources)
	setIfNotEmpty(params, "country", req.Country)
	setIfNotEmpty(params, "category", req.Category)
	if req.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(req.PageSize))
	}
	if req.Page > 0 {
		params.Set("page", strconv.Itoa(req.Page))
	}
	return params
}

func setIfNotEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
