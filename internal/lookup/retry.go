package lookup

import (
	"context"
	"errors"
	"math"
	"net"
	"time"

	"github.com/ppiankov/newsintel/internal/model"
	"go.uber.org/zap"
)

// lookupSleepFunc waits between attempts; tests replace it
var lookupSleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryingLookup retries transient backend failures with exponential backoff
type RetryingLookup struct {
	next           Lookup
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// WithRetry wraps next; maxAttempts <= 1 disables retries
func WithRetry(next Lookup, maxAttempts int) *RetryingLookup {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingLookup{
		next:           next,
		maxAttempts:    maxAttempts,
		initialBackoff: 250 * time.Millisecond,
		maxBackoff:     2 * time.Second,
	}
}

// Lookup calls next until it succeeds, fails permanently, or ctx ends
func (r *RetryingLookup) Lookup(ctx context.Context, query string, bucket model.Bucket) ([]Result, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(float64(r.initialBackoff) * math.Pow(2, float64(attempt-1)))
			if backoff > r.maxBackoff {
				backoff = r.maxBackoff
			}
			zap.L().Debug("retrying lookup",
				zap.String("bucket", string(bucket)),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			if err := lookupSleepFunc(ctx, backoff); err != nil {
				return nil, classify(ctx, err)
			}
		}

		results, err := r.next.Lookup(ctx, query, bucket)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if !IsTransient(err) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// IsTransient reports whether err may clear on retry: 429/5xx answers and
// network errors other than the caller's own deadline
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Transient()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
