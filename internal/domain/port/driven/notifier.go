package driven

import (
	"context"
	"fmt"
	"net/http"
)

// DeliveryError reports a webhook POST that completed with a non-success
// status. By the time a Notifier returns it, the message has already been
// appended to the failure spool.
type DeliveryError struct {
	StatusCode int
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook delivery failed with status %d", e.StatusCode)
}

// RateLimited reports whether the endpoint asked us to back off.
func (e *DeliveryError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Notifier delivers one notification message to the configured webhook.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
