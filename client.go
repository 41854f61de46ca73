package dbsql

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
)

// HTTPClient is the interface for HTTP client.
type HTTPClient interface {
	// Get sends a GET request to the Databricks workspace.
	Get(context.Context, *url.URL) (*http.Response, error)
	// Post sends a POST request with a JSON body to the Databricks workspace.
	Post(context.Context, *url.URL, []byte) (*http.Response, error)
}

type httpClient struct {
	client *http.Client
	token  string
}

// NewHTTPClient creates a new internal HTTP client authenticating with the given bearer token.
func NewHTTPClient(token string) HTTPClient {
	return &httpClient{
		client: http.DefaultClient,
		token:  token,
	}
}

// Ensure httpClient implements HTTPClient.
var _ HTTPClient = (*httpClient)(nil)

func (c *httpClient) Get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.client.Do(req)
}

func (c *httpClient) Post(ctx context.Context, u *url.URL, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// Client talks to the SQL statement execution API of a Databricks workspace.
type Client struct {
	config *Config
	http   HTTPClient
}

// NewClient creates a new client.
//
// Host and token are not checked here; a missing value fails the first call
// before any request is sent.
func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		http:   NewHTTPClient(config.Token),
	}
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return *c.config
}
