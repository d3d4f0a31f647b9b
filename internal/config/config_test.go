package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axi0m/ratatoskr/internal/domain/model"
)

// allConfigKeys lists every env var that Load() reads.
var allConfigKeys = []string{
	"GITHUB_TOKEN",
	"GITLAB_TOKEN",
	"RATATOSKR_DB_PATH",
	"RATATOSKR_WATCHLIST",
	"RATATOSKR_BACKOFF",
	"RATATOSKR_SUPPRESS_FIRST_SEEN",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment. t.Cleanup restores original
// values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")
	t.Setenv("GITLAB_TOKEN", "glpat-test456")
	t.Setenv("RATATOSKR_DB_PATH", "/tmp/test.db")
	t.Setenv("RATATOSKR_WATCHLIST", "/tmp/list.csv")
	t.Setenv("RATATOSKR_BACKOFF", "5s")
	t.Setenv("RATATOSKR_SUPPRESS_FIRST_SEEN", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
	assert.Equal(t, "glpat-test456", cfg.GitLabToken)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "/tmp/list.csv", cfg.Watchlist)
	assert.Equal(t, 5*time.Second, cfg.Backoff)
	assert.True(t, cfg.SuppressFirstSeen)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")
	t.Setenv("GITLAB_TOKEN", "glpat-test456")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "tracker.db", cfg.DBPath)
	assert.Equal(t, "GitHub_Tools_List.csv", cfg.Watchlist)
	assert.Equal(t, time.Minute, cfg.Backoff)
	assert.False(t, cfg.SuppressFirstSeen)
}

func TestLoad_MissingGitHubToken(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITLAB_TOKEN", "glpat-test456")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingGitLabToken(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidBackoff(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")
	t.Setenv("GITLAB_TOKEN", "glpat-test456")
	t.Setenv("RATATOSKR_BACKOFF", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}

func TestWebhookURL(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", "https://discord.example/hook")

	url, err := WebhookURL(model.ChatDiscord)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.example/hook", url)
}

func TestWebhookURL_Unset(t *testing.T) {
	if orig, ok := os.LookupEnv("SLACK_WEBHOOK"); ok {
		t.Cleanup(func() { os.Setenv("SLACK_WEBHOOK", orig) })
		os.Unsetenv("SLACK_WEBHOOK")
	}

	_, err := WebhookURL(model.ChatSlack)
	require.ErrorContains(t, err, "SLACK_WEBHOOK")
}
