// Package gh reads GitHub Projects v2 boards through the GraphQL API and
// exposes a project as a snapshot source: the options of its grouping field
// are the lists, the project items are the cards.
package gh

import (
	"context"
	"fmt"
	"net/http"

	"github.com/machinebox/graphql"
	"github.com/robby/sprintreport/internal/auth"
)

// DefaultEndpoint is the GitHub GraphQL API endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// Client is a GitHub GraphQL API client for Projects v2.
type Client struct {
	gql   *graphql.Client
	token string
}

// New creates a client authenticated with the token from the auth package.
func New() (*Client, error) {
	token, err := auth.GetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain GitHub token: %w", err)
	}
	return NewWithToken(token, DefaultEndpoint, nil), nil
}

// NewWithToken creates a client for an explicit token and endpoint. A nil
// httpClient uses http.DefaultClient.
func NewWithToken(token, endpoint string, httpClient *http.Client) *Client {
	var opts []graphql.ClientOption
	if httpClient != nil {
		opts = append(opts, graphql.WithHTTPClient(httpClient))
	}
	return &Client{
		gql:   graphql.NewClient(endpoint, opts...),
		token: token,
	}
}

// makeRequest executes a GraphQL request with authentication.
func (c *Client) makeRequest(ctx context.Context, req *graphql.Request, resp interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.gql.Run(ctx, req, resp)
}
