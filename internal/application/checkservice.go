package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	retry "github.com/avast/retry-go"

	"github.com/axi0m/ratatoskr/internal/domain/model"
	"github.com/axi0m/ratatoskr/internal/domain/port/driven"
)

// CheckService runs one detection cycle: it gates on the GitHub quota, walks
// every tracked repository, and for each changed aspect persists the new
// state and delivers a notification. Per-repository failures are logged and
// never abort the run.
type CheckService struct {
	store             driven.TrackerStore
	clients           map[model.Host]driven.HostClient
	quota             driven.QuotaReporter
	notifier          driven.Notifier
	backoff           time.Duration
	suppressFirstSeen bool

	// Injectable for tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewCheckService creates a CheckService with all required collaborators.
// backoff is the fixed wait before the single retry after a 429 delivery
// result. When suppressFirstSeen is set, a change against a row that had no
// stored ref yet is persisted without notifying, so seeding a fresh tracker
// does not announce every pre-existing release at once.
func NewCheckService(
	store driven.TrackerStore,
	github driven.HostClient,
	gitlab driven.HostClient,
	quota driven.QuotaReporter,
	notifier driven.Notifier,
	backoff time.Duration,
	suppressFirstSeen bool,
) *CheckService {
	return &CheckService{
		store: store,
		clients: map[model.Host]driven.HostClient{
			model.HostGitHub: github,
			model.HostGitLab: gitlab,
		},
		quota:             quota,
		notifier:          notifier,
		backoff:           backoff,
		suppressFirstSeen: suppressFirstSeen,
		sleep:             time.Sleep,
		now:               time.Now,
	}
}

// Run executes one full check cycle over every tracked repository.
func (s *CheckService) Run(ctx context.Context) error {
	start := s.now()

	repos, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load tracked repositories: %w", err)
	}
	if len(repos) == 0 {
		slog.Info("no repositories tracked, nothing to check")
		return nil
	}

	if err := s.gateOnQuota(ctx, len(repos)); err != nil {
		return err
	}

	var checkErrors, notified int
	for _, repo := range repos {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sent, err := s.checkRepo(ctx, repo)
		notified += sent
		if err != nil {
			slog.Error("repository check failed", "repo", repo.FullName(), "error", err)
			checkErrors++
		}
	}

	slog.Info("check cycle complete",
		"repos", len(repos),
		"notified", notified,
		"errors", checkErrors,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// gateOnQuota suspends the whole run until the GitHub quota window resets
// when the remaining allowance cannot cover at least one call per repository.
func (s *CheckService) gateOnQuota(ctx context.Context, repoCount int) error {
	remaining, reset, err := s.quota.RateLimit(ctx)
	if err != nil {
		return fmt.Errorf("confirm rate limits: %w", err)
	}

	if remaining/repoCount == 0 {
		wait := reset.Sub(s.now())
		if wait > 0 {
			slog.Warn("github quota exhausted, suspending run until reset",
				"remaining", remaining,
				"repos", repoCount,
				"reset_in", wait.Round(time.Second),
			)
			s.sleep(wait)
		}
	}

	return nil
}

// checkRepo fetches, detects, persists, and notifies for one repository.
// It reports how many notifications were delivered. A fetch fault on one
// aspect leaves that aspect unobserved so it can neither fire a change nor
// overwrite stored state; the other aspect is still processed.
func (s *CheckService) checkRepo(ctx context.Context, repo model.TrackedRepository) (int, error) {
	client, ok := s.clients[repo.Host]
	if !ok {
		return 0, fmt.Errorf("no client for host %q", repo.Host)
	}

	var observed model.Observation
	var faults []error

	release, err := client.LatestRelease(ctx, repo.Owner, repo.Name)
	if err != nil {
		faults = append(faults, err)
	} else {
		observed.Release = release
	}

	commit, err := client.LatestCommit(ctx, repo.Owner, repo.Name)
	if err != nil {
		faults = append(faults, err)
	} else {
		observed.Commit = commit
	}

	changes := Detect(repo, observed)

	var notified int
	if changes.Release {
		firstSeen := repo.LatestRelease == ""
		repo.LatestRelease = observed.Release.URL
		slog.Info("new release detected", "repo", repo.FullName(), "release", repo.LatestRelease)

		if err := s.persist(ctx, &repo); err != nil {
			faults = append(faults, err)
		} else if s.announce(ctx, fmt.Sprintf("New release for repository %s: %s", repo.Name, repo.LatestRelease), firstSeen) {
			notified++
		}
	}

	if changes.Commit {
		firstSeen := repo.LatestCommit == ""
		repo.LatestCommit = observed.Commit.URL
		slog.Info("new commit detected", "repo", repo.FullName(), "commit", repo.LatestCommit)

		if err := s.persist(ctx, &repo); err != nil {
			faults = append(faults, err)
		} else if s.announce(ctx, fmt.Sprintf("New commit for repository %s: %s", repo.Name, repo.LatestCommit), firstSeen) {
			notified++
		}
	}

	return notified, errors.Join(faults...)
}

// persist writes the folded state back to the store. A row that vanished
// between ListAll and here is logged and otherwise ignored; the run goes on.
func (s *CheckService) persist(ctx context.Context, repo *model.TrackedRepository) error {
	repo.LastUpdated = s.now().UTC()

	if err := s.store.Update(ctx, *repo); err != nil {
		if errors.Is(err, driven.ErrNotTracked) {
			slog.Error("update matched no tracked row", "repo", repo.FullName())
			return nil
		}
		return err
	}

	return nil
}

// announce delivers one notification, retrying exactly once after the fixed
// backoff when the webhook endpoint answers 429. Every other delivery failure
// is terminal for the message; it has already been spooled by the notifier.
// Reports whether the message was delivered.
func (s *CheckService) announce(ctx context.Context, text string, firstSeen bool) bool {
	if firstSeen && s.suppressFirstSeen {
		slog.Info("suppressing first-seen notification", "message", text)
		return false
	}

	err := retry.Do(
		func() error { return s.notifier.Notify(ctx, text) },
		retry.Attempts(2),
		retry.Delay(s.backoff),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var dErr *driven.DeliveryError
			return errors.As(err, &dErr) && dErr.StatusCode == http.StatusTooManyRequests
		}),
	)
	if err != nil {
		slog.Error("notification delivery failed", "message", text, "error", err)
		return false
	}

	return true
}
