package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultTrendingURL = "https://github.com/trending"

	// trendingRepoLimit bounds how many trending entries are mined.
	trendingRepoLimit = 10
)

// Trending scrapes the public GitHub trending page for repository names.
// It implements ports.TrendSource and needs no authentication.
type Trending struct {
	// URL overrides the trending page, mainly for tests.
	URL string

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// NewTrending creates a trending-page trend source.
func NewTrending() *Trending {
	return &Trending{}
}

// Name identifies the source in logs.
func (t *Trending) Name() string { return "github-trending" }

// Fetch downloads the trending page and extracts keywords from the listed
// repository names.
func (t *Trending) Fetch(ctx context.Context) ([]string, error) {
	pageURL := t.URL
	if pageURL == "" {
		pageURL = defaultTrendingURL
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trending request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending page returned HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse trending page: %w", err)
	}

	names := repoNames(doc, trendingRepoLimit)

	var terms []string
	for _, name := range names {
		terms = append(terms, ExtractKeywords(name)...)
	}
	return terms, nil
}

// repoNames walks the parsed page collecting repository names from the
// article headings ("owner / repo" links).
func repoNames(doc *html.Node, limit int) []string {
	var names []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(names) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "h2" {
			if href, ok := headingLink(n); ok {
				if name := repoFromHref(href); name != "" {
					names = append(names, name)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return names
}

// headingLink finds the first anchor inside a heading and returns its href.
func headingLink(n *html.Node) (string, bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "a" {
			for _, attr := range c.Attr {
				if attr.Key == "href" {
					return attr.Val, true
				}
			}
		}
		if href, ok := headingLink(c); ok {
			return href, ok
		}
	}
	return "", false
}

// repoFromHref turns "/owner/repo" into "repo".
func repoFromHref(href string) string {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
