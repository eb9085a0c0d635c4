package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/newsintel/internal/cache"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return NewClient(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test-agent"}, model.RateLimitingConfig{})
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := lookupSleepFunc
	lookupSleepFunc = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { lookupSleepFunc = orig })
}

func TestWikipediaLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "query", r.URL.Query().Get("action"))
		assert.Equal(t, "mRNA vaccine", r.URL.Query().Get("srsearch"))
		assert.Equal(t, "2", r.URL.Query().Get("srlimit"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"query":{"search":[
			{"title":"MRNA vaccine","snippet":"An <span class=\"searchmatch\">mRNA</span> &quot;vaccine&quot; is"},
			{"title":"","snippet":"skipped"}
		]}}`)
	}))
	defer server.Close()

	results, err := NewWikipediaLookup(testClient(), server.URL+"/w/api.php", 2).
		Lookup(context.Background(), "mRNA vaccine", model.BucketMainstream)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "MRNA vaccine", results[0].Title)
	assert.Equal(t, `An mRNA "vaccine" is`, results[0].Summary)
	assert.Equal(t, server.URL+"/wiki/MRNA_vaccine", results[0].SourceID)
	assert.Equal(t, "Wikipedia", results[0].Source)
}

func TestWikipediaLookup_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"query":{"search":[]}}`)
	}))
	defer server.Close()

	_, err := NewWikipediaLookup(testClient(), server.URL, 4).Lookup(context.Background(), "zzz", model.BucketMainstream)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestCrossrefLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "vaccine efficacy", r.URL.Query().Get("query.title"))
		assert.Equal(t, "4", r.URL.Query().Get("rows"))
		_, _ = fmt.Fprint(w, `{"message":{"items":[
			{"title":["Efficacy of a vaccine"],"container-title":["The Journal"],"DOI":"10.1000/xyz","type":"journal-article","issued":{"date-parts":[[2021,3]]}},
			{"title":[],"DOI":"10.1000/none"},
			{"title":["No link"]}
		]}}`)
	}))
	defer server.Close()

	results, err := NewCrossrefLookup(testClient(), server.URL+"/works", 4).
		Lookup(context.Background(), "vaccine efficacy", model.BucketAcademic)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Efficacy of a vaccine", results[0].Title)
	assert.Equal(t, "https://doi.org/10.1000/xyz", results[0].SourceID)
	assert.Equal(t, "journal-article in The Journal (2021)", results[0].Summary)
}

func TestFeedLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aliens analysis", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Search feed</title>
<item><title>First take</title><link>https://blog.example/1</link><description>&lt;b&gt;Bold&lt;/b&gt; claim</description></item>
<item><title>Second take</title><link>https://blog.example/2</link></item>
<item><title>Third take</title><link>https://blog.example/3</link></item>
</channel></rss>`)
	}))
	defer server.Close()

	results, err := NewFeedLookup(testClient(), server.URL+"/rss?q=%s+analysis", 2).
		Lookup(context.Background(), "aliens", model.BucketAlternative)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "First take", results[0].Title)
	assert.Equal(t, "Bold claim", results[0].Summary)
	assert.Equal(t, "https://blog.example/1", results[0].SourceID)
	assert.Equal(t, "Search feed", results[0].Source)
}

func TestFeedLookup_BadTemplate(t *testing.T) {
	_, err := NewFeedLookup(testClient(), "https://example.com/rss", 2).Lookup(context.Background(), "q", model.BucketAlternative)
	assert.Error(t, err)
}

func TestClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient().Get(context.Background(), "test", server.URL, "")
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusServiceUnavailable, status.Code)
	assert.True(t, status.Transient())
	assert.True(t, IsTransient(err))
	assert.False(t, (&StatusError{Code: http.StatusNotFound}).Transient())
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, `{"query":{"search":[{"title":"Ok","snippet":"fine"}]}}`)
	}))
	defer server.Close()

	l := WithRetry(NewWikipediaLookup(testClient(), server.URL, 4), 3)
	results, err := l.Lookup(context.Background(), "q", model.BucketMainstream)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRetry_PermanentFailureNotRetried(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := WithRetry(NewWikipediaLookup(testClient(), server.URL, 4), 3).
		Lookup(context.Background(), "q", model.BucketMainstream)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, "status 404", Reason(err))
}

func TestRetry_Exhausted(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	l := Func(func(ctx context.Context, q string, b model.Bucket) ([]Result, error) {
		attempts.Add(1)
		return nil, &StatusError{Backend: "x", Code: 502}
	})

	_, err := WithRetry(l, 2).Lookup(context.Background(), "q", model.BucketAcademic)
	require.Error(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(ErrNoResults))
	assert.False(t, IsTransient(ErrTimeout))
	assert.False(t, IsTransient(context.Canceled))
	assert.True(t, IsTransient(&StatusError{Code: 500}))
	assert.False(t, IsTransient(&StatusError{Code: 400}))
}

func TestPolicy_Success(t *testing.T) {
	live := Func(func(ctx context.Context, q string, b model.Bucket) ([]Result, error) {
		return []Result{{Title: "a"}, {Title: "b"}, {Title: "c"}}, nil
	})
	out := NewPolicy(live, time.Second, 2).Resolve(context.Background(), "q", model.BucketMainstream)

	assert.False(t, out.Fallback)
	assert.Len(t, out.Results, 2)
	assert.Empty(t, out.Reason)
}

func TestPolicy_TimeoutFallsBack(t *testing.T) {
	live := Func(func(ctx context.Context, q string, b model.Bucket) ([]Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	start := time.Now()
	out := NewPolicy(live, 20*time.Millisecond, 4).Resolve(context.Background(), "vaccines", model.BucketAcademic)

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, out.Fallback)
	assert.Equal(t, "timeout", out.Reason)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "Academic index: vaccines", out.Results[0].Title)
}

func TestPolicy_EmptyAndErrorFallBack(t *testing.T) {
	empty := Func(func(ctx context.Context, q string, b model.Bucket) ([]Result, error) { return nil, nil })
	out := NewPolicy(empty, time.Second, 4).Resolve(context.Background(), "q", model.BucketMainstream)
	assert.True(t, out.Fallback)
	assert.Equal(t, "no results", out.Reason)

	out = NewPolicy(Router{}, time.Second, 4).Resolve(context.Background(), "q", model.BucketAlternative)
	assert.True(t, out.Fallback)
	assert.Equal(t, "no live backend", out.Reason)
	assert.True(t, strings.HasPrefix(out.Results[0].Title, "Independent analyses on"))

	out = NewPolicy(nil, time.Second, 4).Resolve(context.Background(), "q", model.BucketMainstream)
	assert.True(t, out.Fallback)
	assert.Equal(t, "live lookup disabled", out.Reason)
}

func TestCachedLookup(t *testing.T) {
	var calls atomic.Int32
	live := Func(func(ctx context.Context, q string, b model.Bucket) ([]Result, error) {
		calls.Add(1)
		if q == "none" {
			return nil, ErrNoResults
		}
		return []Result{{Title: q + " " + string(b)}}, nil
	})
	l := WithCache(live, cache.NewMemoryCache(time.Minute, time.Minute), 0)

	for i := 0; i < 3; i++ {
		results, err := l.Lookup(context.Background(), "q", model.BucketMainstream)
		require.NoError(t, err)
		assert.Equal(t, "q mainstream", results[0].Title)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, _ = l.Lookup(context.Background(), "q", model.BucketAcademic)
	assert.Equal(t, int32(2), calls.Load())

	_, err := l.Lookup(context.Background(), "none", model.BucketAcademic)
	assert.ErrorIs(t, err, ErrNoResults)
	_, _ = l.Lookup(context.Background(), "none", model.BucketAcademic)
	assert.Equal(t, int32(4), calls.Load(), "failures are not cached")

	_, cached := WithCache(live, nil, 0).(*CachedLookup)
	assert.False(t, cached)
}

func TestGuidance(t *testing.T) {
	for _, b := range model.Buckets {
		g := Guidance("aliens exist", b)
		require.NotEmpty(t, g, b)
		assert.Contains(t, g[0].Title, "aliens exist")
		assert.True(t, strings.HasPrefix(g[0].SourceID, "https://"))
	}
	assert.Len(t, OSINTGuidance("x"), 3)
	assert.Equal(t, "Academic index: this claim", Guidance(" ", model.BucketAcademic)[0].Title)
}

func TestNewLive(t *testing.T) {
	cfg := model.DefaultConfig()
	router, ok := NewLive(cfg, nil).(Router)
	require.True(t, ok)
	assert.Len(t, router, 3)

	cfg.Lookup.Enabled = false
	assert.Nil(t, NewLive(cfg, nil))
}
