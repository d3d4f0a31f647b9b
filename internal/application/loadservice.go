package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/axi0m/ratatoskr/internal/domain/port/driven"
)

// LoadService seeds the tracker from the watch-list. Entries already tracked
// under any provider are left untouched, so their recorded state survives
// reloads; new entries start with no release or commit ref.
type LoadService struct {
	store  driven.TrackerStore
	source driven.WatchlistSource

	now func() time.Time
}

// NewLoadService creates a LoadService reading entries from source.
func NewLoadService(store driven.TrackerStore, source driven.WatchlistSource) *LoadService {
	return &LoadService{
		store:  store,
		source: source,
		now:    time.Now,
	}
}

// Run reads the watch-list and inserts every entry not already present.
func (s *LoadService) Run(ctx context.Context) error {
	entries, err := s.source.Entries()
	if err != nil {
		return fmt.Errorf("read watch-list: %w", err)
	}

	var inserted, skipped int
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		tracked, err := s.store.Contains(ctx, entry.Owner, entry.Name)
		if err != nil {
			return fmt.Errorf("lookup %s/%s: %w", entry.Owner, entry.Name, err)
		}
		if tracked {
			skipped++
			continue
		}

		if err := s.store.Insert(ctx, entry.Owner, entry.Name, entry.Host, s.now().UTC()); err != nil {
			// A row that appeared between Contains and Insert is just a skip.
			if errors.Is(err, driven.ErrAlreadyTracked) {
				slog.Warn("duplicate watch-list entry", "owner", entry.Owner, "repo", entry.Name)
				skipped++
				continue
			}
			return fmt.Errorf("insert %s/%s: %w", entry.Owner, entry.Name, err)
		}
		inserted++
	}

	slog.Info("watch-list loaded",
		"entries", len(entries),
		"inserted", inserted,
		"already_tracked", skipped,
	)

	return nil
}
