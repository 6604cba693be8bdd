package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	userAgent      = "flipper/1.0 (+https://github.com/aretw0/flipper)"

	// reposPerQuery bounds how deep each search result is read.
	reposPerQuery = 10

	// maxBodyBytes guards against oversized API responses.
	maxBodyBytes = 4 << 20
)

// DefaultQueries are the repository searches mined for keywords on every pass.
var DefaultQueries = []string{
	"created:>2024-01-01 stars:>100",
	"ai automation created:>2024-01-01",
	"saas template created:>2024-01-01",
}

// Client queries the GitHub search API and extracts candidate keywords from
// repository names and descriptions. It implements ports.TrendSource.
type Client struct {
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// Token authenticates requests. Unauthenticated search works but is
	// rate-limited hard, so the provisioner usually injects one.
	Token string

	// Queries overrides DefaultQueries when non-empty.
	Queries []string

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// NewClient creates a search-backed trend source.
func NewClient(token string) *Client {
	return &Client{Token: token}
}

// Name identifies the source in logs.
func (c *Client) Name() string { return "github-search" }

// Fetch runs every query and returns the extracted keywords.
// Individual query failures are tolerated as long as at least one query
// produced data; a fully failed fetch returns the last error.
func (c *Client) Fetch(ctx context.Context) ([]string, error) {
	queries := c.Queries
	if len(queries) == 0 {
		queries = DefaultQueries
	}

	var (
		terms   []string
		lastErr error
		ok      bool
	)
	for _, query := range queries {
		repos, err := c.search(ctx, query)
		if err != nil {
			lastErr = err
			continue
		}
		ok = true
		if len(repos) > reposPerQuery {
			repos = repos[:reposPerQuery]
		}
		for _, repo := range repos {
			terms = append(terms, ExtractKeywords(repo.Name+" "+repo.Description)...)
		}
	}

	if !ok {
		return nil, fmt.Errorf("all search queries failed: %w", lastErr)
	}
	return terms, nil
}

type repository struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *Client) search(ctx context.Context, query string) ([]repository, error) {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	endpoint := base + "/search/repositories?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "token "+c.Token)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Items []repository `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return result.Items, nil
}
