package driven

import (
	"context"
	"time"

	"github.com/axi0m/ratatoskr/internal/domain/model"
)

// HostClient fetches the newest release and commit references for a
// repository on one hosting provider. A zero Ref with a nil error is a
// confirmed-empty result; a non-nil error is a transport or authorization
// fault and must not be treated as empty.
type HostClient interface {
	LatestRelease(ctx context.Context, owner, name string) (model.Ref, error)
	LatestCommit(ctx context.Context, owner, name string) (model.Ref, error)
	VerifyToken(ctx context.Context) error
}

// QuotaReporter reports remaining API quota and when the quota window resets.
type QuotaReporter interface {
	RateLimit(ctx context.Context) (remaining int, reset time.Time, err error)
}
