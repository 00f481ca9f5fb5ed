// Package trello provides a minimal Trello REST client: the two list reads a
// board snapshot needs.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the Trello REST API root.
const DefaultBaseURL = "https://api.trello.com/1"

// Client reads lists from the Trello REST API with an API key and user token.
type Client struct {
	baseURL    string
	apiKey     string
	userToken  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Trello client for the given credentials.
func New(apiKey, userToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		userToken:  userToken,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListName returns the name of a list.
func (c *Client) ListName(ctx context.Context, listID string) (string, error) {
	var resp struct {
		Value string `json:"_value"`
	}
	if err := c.get(ctx, listURLPart(listID, "name"), &resp); err != nil {
		return "", fmt.Errorf("failed to get list name: %w", err)
	}
	return resp.Value, nil
}

// ListCards returns the open cards of a list as raw JSON objects, in list order.
func (c *Client) ListCards(ctx context.Context, listID string) ([]map[string]any, error) {
	var cards []map[string]any
	if err := c.get(ctx, listURLPart(listID, "cards"), &cards); err != nil {
		return nil, fmt.Errorf("failed to get list cards: %w", err)
	}
	if cards == nil {
		cards = []map[string]any{}
	}
	return cards, nil
}

func listURLPart(listID, part string) string {
	return "/lists/" + url.PathEscape(listID) + "/" + part
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("token", c.userToken)
	endpoint := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Trello request", "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trello API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
