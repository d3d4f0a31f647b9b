// Package github implements the HostClient port for GitHub using go-github.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/axi0m/ratatoskr/internal/domain/model"
	"github.com/axi0m/ratatoskr/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.HostClient    = (*Client)(nil)
	_ driven.QuotaReporter = (*Client)(nil)
)

// Client implements the HostClient and QuotaReporter ports for GitHub.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	client := gh.NewClient(httpClient)
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// LatestRelease returns the web URL of the newest release. A repository with
// no releases answers 404 on the releases/latest endpoint; that is a
// confirmed-empty result, not a fault.
func (c *Client) LatestRelease(ctx context.Context, owner, name string) (model.Ref, error) {
	release, resp, err := c.gh.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			slog.Debug("no releases found", "repo", owner+"/"+name)
			return model.Ref{}, nil
		}
		return model.Ref{}, fmt.Errorf("latest release for %s/%s: %w", owner, name, err)
	}

	logRateLimit(resp, owner+"/"+name+"/releases")

	htmlURL := release.GetHTMLURL()
	if htmlURL == "" {
		return model.Ref{}, nil
	}

	return model.FoundRef(htmlURL), nil
}

// LatestCommit returns the web URL of the newest commit on the default
// branch. An empty repository (409 from the commits endpoint, or an empty
// list) is a confirmed-empty result.
func (c *Client) LatestCommit(ctx context.Context, owner, name string) (model.Ref, error) {
	opts := &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	}

	commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			slog.Debug("repository has no commits", "repo", owner+"/"+name)
			return model.Ref{}, nil
		}
		return model.Ref{}, fmt.Errorf("latest commit for %s/%s: %w", owner, name, err)
	}

	logRateLimit(resp, owner+"/"+name+"/commits")

	if len(commits) == 0 {
		return model.Ref{}, nil
	}

	htmlURL := commits[0].GetHTMLURL()
	if htmlURL == "" {
		return model.Ref{}, nil
	}

	return model.FoundRef(htmlURL), nil
}

// RateLimit returns the remaining core API quota and its reset time.
func (c *Client) RateLimit(ctx context.Context) (int, time.Time, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("github rate limit status: %w", err)
	}

	core := limits.GetCore()
	return core.Remaining, core.Reset.Time, nil
}

// VerifyToken confirms the configured token against the authenticated-user
// endpoint. An expired or invalid token surfaces here as a 401 error.
func (c *Client) VerifyToken(ctx context.Context) error {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("verify github token: %w", err)
	}

	slog.Info("github token verified", "login", user.GetLogin())
	return nil
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

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
