// Package lookup implements the Reference Lookup capability: live backends
// (Wikipedia, Crossref, RSS search feeds), static guidance, and the policy
// that tries the live path under a timeout and falls back on any failure.
package lookup

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/rotisserie/eris"
)

// Result is one hit returned by a lookup backend
type Result struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	SourceID string `json:"source_id"`
	Source   string `json:"source"`
	// Relevance is the backend's own ranking when it has one; empty lets the
	// caller score the hit against the claim
	Relevance model.Relevance `json:"relevance,omitempty"`
}

// Lookup queries one backend for a bucket
type Lookup interface {
	Lookup(ctx context.Context, query string, bucket model.Bucket) ([]Result, error)
}

// Func adapts a plain function to Lookup
type Func func(ctx context.Context, query string, bucket model.Bucket) ([]Result, error)

// Lookup calls f
func (f Func) Lookup(ctx context.Context, query string, bucket model.Bucket) ([]Result, error) {
	return f(ctx, query, bucket)
}

var (
	// ErrTimeout is returned when the per-request deadline passes
	ErrTimeout = eris.New("lookup timed out")
	// ErrNoResults is returned when a backend answers with nothing usable
	ErrNoResults = eris.New("lookup returned no results")
	// ErrUnsupportedBucket is returned by a Router with no backend for the bucket
	ErrUnsupportedBucket = eris.New("no backend for bucket")
)

// StatusError is a non-2xx answer from a backend
type StatusError struct {
	Backend string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d %s", e.Backend, e.Code, http.StatusText(e.Code))
}

// Transient reports whether retrying may succeed (429 and 5xx)
func (e *StatusError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Router dispatches each bucket to its backend
type Router map[model.Bucket]Lookup

// Lookup forwards to the bucket's backend
func (r Router) Lookup(ctx context.Context, query string, bucket model.Bucket) ([]Result, error) {
	backend, ok := r[bucket]
	if !ok || backend == nil {
		return nil, eris.Wrapf(ErrUnsupportedBucket, "bucket %s", bucket)
	}
	return backend.Lookup(ctx, query, bucket)
}
