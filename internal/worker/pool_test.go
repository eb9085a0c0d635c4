package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResult struct{ err error }

func (r stubResult) GetError() error { return r.err }

// funcJob adapts a plain function to Job
type funcJob func(ctx context.Context) error

func (f funcJob) Execute(ctx context.Context) Result {
	return stubResult{err: f(ctx)}
}

func sleepJob(d time.Duration) funcJob {
	return func(ctx context.Context) error {
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func finishesWithin(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("did not finish within %v", d)
	}
}

func TestNewPool_ClampsWorkers(t *testing.T) {
	for in, want := range map[int]int{4: 4, 0: 1, -3: 1} {
		assert.Equal(t, want, NewPool(context.Background(), in).workers, "workers=%d", in)
	}
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := NewPool(context.Background(), 3)
	pool.Start()

	var ran atomic.Int32
	for i := 0; i < 25; i++ {
		pool.Submit(funcJob(func(context.Context) error {
			ran.Add(1)
			return nil
		}))
	}

	assert.Len(t, pool.Wait(), 25)
	assert.EqualValues(t, 25, ran.Load())
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 4
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var inFlight, peak atomic.Int32
	for i := 0; i < 40; i++ {
		pool.Submit(funcJob(func(context.Context) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		}))
	}
	pool.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Positive(t, peak.Load())
}

func TestPool_CollectsErrors(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(funcJob(func(context.Context) error { return errors.New("lookup backend down") }))
	pool.Submit(funcJob(func(context.Context) error { return nil }))

	results := pool.Wait()
	require.Len(t, results, 2)

	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestResultCollector_Snapshot(t *testing.T) {
	c := NewResultCollector()
	c.Add(stubResult{})
	snap := c.Results()
	c.Add(stubResult{err: errors.New("late")})

	assert.Len(t, snap, 1, "snapshot is not affected by later adds")
	assert.Len(t, c.Results(), 2)
}

func TestPool_SubmitAfterShutdownReturns(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	finishesWithin(t, time.Second, func() { pool.Submit(sleepJob(0)) })
}

func TestPool_ShutdownCancelsRunningJobs(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(sleepJob(5 * time.Second))
	pool.Submit(funcJob(func(context.Context) error {
		close(started)
		return nil
	}))
	<-started

	finishesWithin(t, time.Second, pool.Shutdown)
}

func TestPool_ParentCancellationUnblocksSubmit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()
	cancel()

	finishesWithin(t, time.Second, func() { pool.Submit(sleepJob(0)) })
	pool.Shutdown()
}

func TestPool_ManyJobsOneWorker(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()
	for i := 0; i < 100; i++ {
		pool.Submit(sleepJob(0))
	}
	assert.Len(t, pool.Wait(), 100)
}

func TestPool_AnalysisJobs(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	for i, src := range []string{"first passage", "bad input", "third passage"} {
		pool.Submit(&AnalysisJob{Index: i, Source: src, Analyzer: &mockAnalyzer{failOn: "bad"}})
	}

	results := pool.Wait()
	require.Len(t, results, 3)
	for _, r := range results {
		ar, ok := r.(*AnalysisResult)
		require.True(t, ok)
		if ar.Source == "bad input" {
			assert.Error(t, ar.GetError())
		} else {
			assert.Equal(t, ar.Source, ar.Report.Topic)
		}
	}
}
