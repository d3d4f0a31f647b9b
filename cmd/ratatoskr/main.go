package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/axi0m/ratatoskr/internal/adapter/driven/github"
	gitlabadapter "github.com/axi0m/ratatoskr/internal/adapter/driven/gitlab"
	sqliteadapter "github.com/axi0m/ratatoskr/internal/adapter/driven/sqlite"
	"github.com/axi0m/ratatoskr/internal/adapter/driven/watchlist"
	"github.com/axi0m/ratatoskr/internal/adapter/driven/webhook"
	"github.com/axi0m/ratatoskr/internal/application"
	"github.com/axi0m/ratatoskr/internal/config"
	"github.com/axi0m/ratatoskr/internal/domain/model"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.5.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		load     bool
		check    bool
		examples bool
		provider string
	)

	cmd := &cobra.Command{
		Use:   "ratatoskr",
		Short: "Track new releases and commits of GitHub and GitLab repositories",
		Long: `ratatoskr keeps a local SQLite tracker of repositories read from a CSV
watch-list, and on each check run announces new releases and commits to a
chat webhook (Rocket.Chat, Discord, MS Teams, or Slack).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case examples:
				printExamples(cmd)
				return nil
			case load:
				return runLoad(cmd.Context())
			case check:
				return runCheck(cmd.Context(), model.ChatProvider(provider))
			default:
				return cmd.Help()
			}
		},
	}

	cmd.Flags().BoolVarP(&load, "load", "l", false, "load the watch-list CSV into the tracker database")
	cmd.Flags().BoolVarP(&check, "check", "c", false, "check tracked repositories for new releases and commits")
	cmd.Flags().BoolVarP(&examples, "examples", "e", false, "print usage examples")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "chat provider to notify: rocketchat, discord, msteams, slack")
	cmd.MarkFlagsMutuallyExclusive("load", "check", "examples")

	return cmd
}

func printExamples(cmd *cobra.Command) {
	fmt.Fprintln(cmd.OutOrStdout(), `Examples:
  ratatoskr --load
      Seed the tracker database from the watch-list CSV.

  ratatoskr --check --provider discord
      Check every tracked repository and announce changes to the
      Discord webhook read from DISCORD_WEBHOOK.

  RATATOSKR_WATCHLIST=my_tools.csv ratatoskr --load
      Load from an alternative watch-list file.`)
}

// loadDotenv merges a .env file from the working directory into the
// environment. A missing file is fine; real environment variables win.
func loadDotenv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func runLoad(parent context.Context) error {
	if err := loadDotenv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	svc := application.NewLoadService(sqliteadapter.NewTrackerRepo(db), watchlist.NewFile(cfg.Watchlist))
	return svc.Run(ctx)
}

func runCheck(parent context.Context, provider model.ChatProvider) error {
	if provider == "" {
		return fmt.Errorf("a chat provider is required with --check (choose one of %v)", model.ChatProviders())
	}
	if !provider.IsValid() {
		return fmt.Errorf("unknown chat provider %q (choose one of %v)", provider, model.ChatProviders())
	}

	if err := loadDotenv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	webhookURL, err := config.WebhookURL(provider)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	github := githubadapter.NewClient(cfg.GitHubToken)
	gitlab, err := gitlabadapter.NewClient(cfg.GitLabToken)
	if err != nil {
		return err
	}

	// Fail fast on dead tokens before touching any repository.
	if err := github.VerifyToken(ctx); err != nil {
		return fmt.Errorf("github token: %w", err)
	}
	if err := gitlab.VerifyToken(ctx); err != nil {
		return fmt.Errorf("gitlab token: %w", err)
	}

	notifier := webhook.NewNotifier(webhookURL, provider, webhook.SpoolFilename(time.Now(), os.Getpid()))

	svc := application.NewCheckService(
		sqliteadapter.NewTrackerRepo(db),
		github,
		gitlab,
		github,
		notifier,
		cfg.Backoff,
		cfg.SuppressFirstSeen,
	)
	return svc.Run(ctx)
}

func openDatabase(path string) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.Open(path)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.Initialize(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Info("database ready", "path", path)
	return db, nil
}

func closeDatabase(db *sqliteadapter.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
