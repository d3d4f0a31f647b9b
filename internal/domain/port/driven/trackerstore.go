package driven

import (
	"context"
	"errors"
	"time"

	"github.com/axi0m/ratatoskr/internal/domain/model"
)

// Sentinel errors returned by TrackerStore implementations.
var (
	// ErrAlreadyTracked indicates an insert collided with an existing row.
	ErrAlreadyTracked = errors.New("repository already tracked")

	// ErrNotTracked indicates an update or remove matched no row.
	ErrNotTracked = errors.New("repository not tracked")
)

// TrackerStore defines the driven port for repository tracking state.
// Contains ignores the host field: an owner/name pair counts as tracked no
// matter which provider it was recorded under. Insert returns
// ErrAlreadyTracked on a duplicate (owner, name, host) tuple; Update and
// Remove return ErrNotTracked when nothing matches.
type TrackerStore interface {
	ListAll(ctx context.Context) ([]model.TrackedRepository, error)
	Contains(ctx context.Context, owner, name string) (bool, error)
	Insert(ctx context.Context, owner, name string, host model.Host, observedAt time.Time) error
	Update(ctx context.Context, repo model.TrackedRepository) error
	Remove(ctx context.Context, owner, name string) error
}
