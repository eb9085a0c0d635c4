package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/newsintel/internal/extract/adapters"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/util"
	"github.com/ppiankov/newsintel/internal/worker"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const fetchMaxAttempts = 3

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

// ErrDisallowed is returned when robots.txt forbids fetching the article
var ErrDisallowed = eris.New("disallowed by robots.txt")

// StatusError is a non-2xx article response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Fetcher retrieves article pages for URL inputs
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	registry   *adapters.Registry
}

// NewFetcher creates a fetcher; robots.txt is not consulted unless WithRobots is used
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(httpProxy, httpsProxy, noProxy)
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return eris.New("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		registry:  adapters.NewRegistry(),
	}
}

// NewFetcherFromConfig creates a fetcher from the http and rate_limiting sections
func NewFetcherFromConfig(cfg model.HTTPConfig, rl model.RateLimitingConfig) *Fetcher {
	f := NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBodyBytes, cfg.InsecureTLS, cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	f.WithLimiter(worker.NewLimiterFromConfig(rl))
	if cfg.RespectRobots {
		f.WithRobots(util.NewRobotsChecker(cfg.UserAgent, 10*time.Second).WithProxy(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy))
	}
	return f
}

// WithRobots enables robots.txt checks before every article fetch
func (f *Fetcher) WithRobots(r *util.RobotsChecker) *Fetcher {
	f.robots = r
	return f
}

// WithLimiter throttles article fetches per host and honours robots.txt crawl delays
func (f *Fetcher) WithLimiter(l *worker.Limiter) *Fetcher {
	f.limiter = l
	return f
}

// FetchResult contains the fetched HTML and response metadata
type FetchResult struct {
	HTML        string
	FinalURL    string
	ContentType string
	StatusCode  int
}

// Fetch retrieves rawURL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}

	return &FetchResult{
		HTML:        string(body),
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

// FetchWithRetry retries transient failures (5xx, 429, refused or reset
// connections) with exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < fetchMaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			zap.L().Debug("retrying article fetch", zap.String("url", rawURL), zap.Int("attempt", attempt+1), zap.Duration("backoff", backoff))
			fetchSleepFunc(backoff)
		}
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "fetch cancelled")
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// FetchArticle checks robots.txt, fetches rawURL and extracts its readable text
func (f *Fetcher) FetchArticle(ctx context.Context, rawURL string) (*adapters.Article, error) {
	var delay time.Duration
	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, eris.Wrapf(ErrDisallowed, "fetch %s", rawURL)
		}
		delay = crawlDelay
	}
	if f.limiter != nil {
		if delay > 0 {
			zap.L().Debug("robots.txt crawl delay", zap.String("url", rawURL), zap.Duration("delay", delay))
		}
		if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
			return nil, eris.Wrap(err, "rate limit")
		}
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	article, err := f.registry.Extract(result.HTML, result.FinalURL, result.ContentType)
	if err != nil {
		return nil, eris.Wrap(err, "extract article")
	}
	zap.L().Debug("article extracted",
		zap.String("url", result.FinalURL),
		zap.String("adapter", article.Adapter),
		zap.Int("chars", len(article.Text)),
	)
	return article, nil
}

// isRetryableFetchError reports whether a fetch error is worth another attempt
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests || status.Code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset")
}
