// Package config resolves runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/axi0m/ratatoskr/internal/domain/model"
)

// Config holds every setting the binary reads from the environment. Both
// host tokens are required even for runs that only touch one host, because
// token validity is verified up front.
type Config struct {
	GitHubToken string `envconfig:"GITHUB_TOKEN" required:"true"`
	GitLabToken string `envconfig:"GITLAB_TOKEN" required:"true"`

	DBPath            string        `envconfig:"RATATOSKR_DB_PATH" default:"tracker.db"`
	Watchlist         string        `envconfig:"RATATOSKR_WATCHLIST" default:"GitHub_Tools_List.csv"`
	Backoff           time.Duration `envconfig:"RATATOSKR_BACKOFF" default:"60s"`
	SuppressFirstSeen bool          `envconfig:"RATATOSKR_SUPPRESS_FIRST_SEEN" default:"false"`
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// WebhookURL resolves the incoming-webhook URL for the given chat provider
// from its <PROVIDER>_WEBHOOK environment variable.
func WebhookURL(provider model.ChatProvider) (string, error) {
	url := os.Getenv(provider.WebhookEnvVar())
	if url == "" {
		return "", fmt.Errorf("environment variable %s is not set", provider.WebhookEnvVar())
	}
	return url, nil
}
