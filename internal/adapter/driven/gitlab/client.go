// Package gitlab implements the HostClient port for GitLab using the
// official client-go SDK.
package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/axi0m/ratatoskr/internal/domain/model"
	"github.com/axi0m/ratatoskr/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.HostClient = (*Client)(nil)

// Client implements the HostClient port against the GitLab v4 API. The SDK
// percent-encodes the owner/name pair into the project id path segment.
type Client struct {
	gl *gl.Client
}

// NewClient creates a GitLab API client authenticated with a personal access
// token against gitlab.com.
func NewClient(token string) (*Client, error) {
	// The SDK retries 429s and 5xxs on its own; delivery and fetch retry
	// policy lives in the check orchestrator, so switch that off.
	client, err := gl.NewClient(token, gl.WithoutRetries())
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}

	return &Client{gl: client}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client, err := gl.NewClient(token, gl.WithBaseURL(baseURL), gl.WithHTTPClient(httpClient), gl.WithoutRetries())
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}

	return &Client{gl: client}, nil
}

// LatestRelease returns the self link of the newest release. A 200 with an
// empty releases array is a confirmed-empty result; an unknown project (404)
// is reported empty with a warning so a bad watch-list URL is visible.
func (c *Client) LatestRelease(ctx context.Context, owner, name string) (model.Ref, error) {
	project := owner + "/" + name
	opts := &gl.ListReleasesOptions{
		ListOptions: gl.ListOptions{PerPage: 1},
	}

	releases, resp, err := c.gl.Releases.ListReleases(project, opts, gl.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			slog.Warn("gitlab project not found, confirm the watch-list URL", "project", project)
			return model.Ref{}, nil
		}
		return model.Ref{}, fmt.Errorf("latest release for %s: %w", project, err)
	}

	if len(releases) == 0 {
		slog.Debug("no releases found", "project", project)
		return model.Ref{}, nil
	}

	selfURL := releases[0].Links.Self
	if selfURL == "" {
		return model.Ref{}, nil
	}

	return model.FoundRef(selfURL), nil
}

// LatestCommit returns the web URL of the newest commit on the default
// branch.
func (c *Client) LatestCommit(ctx context.Context, owner, name string) (model.Ref, error) {
	project := owner + "/" + name
	opts := &gl.ListCommitsOptions{
		ListOptions: gl.ListOptions{PerPage: 1},
	}

	commits, resp, err := c.gl.Commits.ListCommits(project, opts, gl.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			slog.Warn("gitlab project not found, confirm the watch-list URL", "project", project)
			return model.Ref{}, nil
		}
		return model.Ref{}, fmt.Errorf("latest commit for %s: %w", project, err)
	}

	if len(commits) == 0 {
		return model.Ref{}, nil
	}

	if commits[0].WebURL == "" {
		return model.Ref{}, nil
	}

	return model.FoundRef(commits[0].WebURL), nil
}

// VerifyToken confirms the configured token by fetching the authenticated
// user. An expired or revoked token surfaces here as a 401 error.
func (c *Client) VerifyToken(ctx context.Context) error {
	user, _, err := c.gl.Users.CurrentUser(gl.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("verify gitlab token: %w", err)
	}

	slog.Info("gitlab token verified", "username", user.Username)
	return nil
}
