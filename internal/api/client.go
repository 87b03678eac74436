package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rickgao/bpx-grid/internal/auth"
	"github.com/rickgao/bpx-grid/internal/retry"
)

// DefaultBaseURL is the production REST endpoint.
const DefaultBaseURL = "https://api.backpack.exchange/"

// Policies holds the per-endpoint retry policies.
type Policies struct {
	// Balance retries indefinitely; the strategies cannot size an order
	// without a balance read.
	Balance retry.Policy
	// Submit bounds order submission retries. Every attempt is re-signed.
	Submit retry.Policy
	// Cancel bounds cancel retries with a fixed delay.
	Cancel retry.Policy
	// Query is used for order status polling, exponential from 1s.
	Query retry.Policy
	// Depth retries order book reads with a short fixed delay.
	Depth retry.Policy
}

// DefaultPolicies returns the production retry configuration.
func DefaultPolicies() Policies {
	return Policies{
		Balance: retry.Policy{MaxAttempts: retry.Unbounded, Delay: 5 * time.Second, Strategy: retry.Fixed},
		Submit:  retry.Policy{MaxAttempts: 5, Delay: 5 * time.Second, Strategy: retry.Fixed},
		Cancel:  retry.Policy{MaxAttempts: 5, Delay: 5 * time.Second, Strategy: retry.Fixed},
		Query:   retry.Policy{MaxAttempts: 5, Delay: time.Second, MaxDelay: time.Minute, Strategy: retry.Exponential},
		Depth:   retry.Policy{MaxAttempts: retry.Unbounded, Delay: 2 * time.Second, Strategy: retry.Fixed},
	}
}

// Client provides access to the Backpack REST API. Credentials may be nil
// for a public-only (market data) client.
type Client struct {
	baseURL    string
	creds      *auth.Credentials
	httpClient *http.Client
	logger     *slog.Logger
	policies   Policies
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client.
func NewClient(baseURL string, creds *auth.Credentials, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   slog.Default(),
		policies: DefaultPolicies(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithProxy routes all requests through the given proxy URL.
func WithProxy(proxy *url.URL) ClientOption {
	return func(c *Client) {
		transport := &http.Transport{Proxy: http.ProxyURL(proxy)}
		c.httpClient.Transport = transport
	}
}

// WithPolicies overrides the per-endpoint retry policies.
func WithPolicies(p Policies) ClientOption {
	return func(c *Client) {
		c.policies = p
	}
}
