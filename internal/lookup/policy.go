package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/newsintel/internal/model"
	"go.uber.org/zap"
)

// Outcome is what the policy settled on for one query and bucket
type Outcome struct {
	Results  []Result
	Fallback bool   // Results are static guidance
	Reason   string // Why the live path was abandoned
}

// Policy tries the live lookup under a timeout and substitutes static
// guidance on any failure, timeout or empty answer
type Policy struct {
	live       Lookup
	fallback   Lookup
	timeout    time.Duration
	maxResults int
}

// NewPolicy creates a policy; a nil live lookup always falls back
func NewPolicy(live Lookup, timeout time.Duration, maxResults int) *Policy {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if maxResults <= 0 {
		maxResults = 4
	}
	return &Policy{live: live, fallback: NewStaticFallbackLookup(), timeout: timeout, maxResults: maxResults}
}

// Resolve never returns an error: every failure becomes a fallback outcome
func (p *Policy) Resolve(ctx context.Context, query string, bucket model.Bucket) Outcome {
	if p.live == nil {
		return p.degrade(ctx, query, bucket, "live lookup disabled")
	}

	lctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results, err := p.live.Lookup(lctx, query, bucket)
	if err == nil && len(results) == 0 {
		err = ErrNoResults
	}
	if err != nil {
		reason := Reason(err)
		if errors.Is(lctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			reason = "timeout"
		}
		zap.L().Warn("lookup failed, using guidance",
			zap.String("bucket", string(bucket)),
			zap.String("query", query),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return p.degrade(ctx, query, bucket, reason)
	}

	if len(results) > p.maxResults {
		results = results[:p.maxResults]
	}
	return Outcome{Results: results}
}

func (p *Policy) degrade(ctx context.Context, query string, bucket model.Bucket, reason string) Outcome {
	results, _ := p.fallback.Lookup(ctx, query, bucket)
	return Outcome{Results: results, Fallback: true, Reason: reason}
}

// Reason condenses a lookup error into a short report string
func Reason(err error) string {
	var status *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrNoResults):
		return "no results"
	case errors.Is(err, ErrUnsupportedBucket):
		return "no live backend"
	case errors.As(err, &status):
		return fmt.Sprintf("status %d", status.Code)
	default:
		return "error"
	}
}
