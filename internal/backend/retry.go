package backend

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/clarifai/internal/model"
)

// baseBackoff doubles on every retry: 500ms, 1s, 2s, ...
const baseBackoff = 500 * time.Millisecond

// sleepFunc waits between attempts; tests replace it
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryable reports whether err is worth another attempt: transport
// failures, 5xx and 429. Client errors and cancellation are final.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var svc *model.ServiceError
	if !errors.As(err, &svc) {
		return false
	}
	return svc.StatusCode == 0 || svc.StatusCode >= 500 || svc.StatusCode == 429
}

func backoff(attempt int) time.Duration {
	return baseBackoff * time.Duration(1<<(attempt-1))
}
