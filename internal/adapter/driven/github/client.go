// Package github implements the BadgePublisher port using the go-github library.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
	"github.com/simplepixelfont/spf-go/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BadgePublisher = (*Client)(nil)

// Client implements the driven.BadgePublisher port against the GitHub gist API.
type Client struct {
	gh       *gh.Client
	gistID   string
	filename string
}

// NewClient creates a new gist client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token, gistID, filename string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:       client,
		gistID:   gistID,
		filename: filename,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, gistID, filename string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:       client,
		gistID:   gistID,
		filename: filename,
	}, nil
}

// Current retrieves the badge currently stored in the gist. It returns
// nil, nil when the gist or the badge file does not exist yet, and when the
// stored content is not badge JSON (the next publish overwrites it).
func (c *Client) Current(ctx context.Context) (*model.Badge, error) {
	gist, resp, err := c.gh.Gists.Get(ctx, c.gistID)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching gist %s: %w", c.gistID, err)
	}

	logRateLimit(resp, "gists/"+c.gistID)

	file, ok := gist.Files[gh.GistFilename(c.filename)]
	if !ok || file.Content == nil {
		return nil, nil
	}

	var badge model.Badge
	if err := json.Unmarshal([]byte(file.GetContent()), &badge); err != nil {
		slog.Warn("gist file holds invalid badge JSON, treating as absent",
			"gist", c.gistID,
			"file", c.filename,
			"error", err,
		)
		return nil, nil
	}

	return &badge, nil
}

// Publish writes the badge document to the gist file, creating the file on
// first publish and replacing it afterwards.
func (c *Client) Publish(ctx context.Context, badge model.Badge) error {
	content, err := json.MarshalIndent(badge, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding badge: %w", err)
	}

	payload := &gh.Gist{
		Files: map[gh.GistFilename]gh.GistFile{
			gh.GistFilename(c.filename): {Content: gh.Ptr(string(content))},
		},
	}

	_, resp, err := c.gh.Gists.Edit(ctx, c.gistID, payload)
	if err != nil {
		return fmt.Errorf("updating gist %s: %w", c.gistID, err)
	}

	logRateLimit(resp, "gists/"+c.gistID)
	return nil
}

// ValidateToken verifies the client's personal access token by fetching the
// authenticated user, returning the username on success.
func (c *Client) ValidateToken(ctx context.Context) (string, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("token validation failed: %w", err)
	}
	logRateLimit(resp, "user")
	return user.GetLogin(), nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
