package driven

import "github.com/axi0m/ratatoskr/internal/domain/model"

// WatchlistSource supplies the repositories that should be tracked.
type WatchlistSource interface {
	Entries() ([]model.WatchEntry, error)
}
