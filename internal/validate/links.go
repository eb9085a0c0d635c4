package validate

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/util"
	"github.com/rotisserie/eris"
)

const linkMaxAttempts = 3

// linkSleepFunc is the sleep function used between retries (injectable for tests)
var linkSleepFunc = time.Sleep

// LinkStatus is the outcome of one reachability check
type LinkStatus struct {
	URL        string
	StatusCode int
	Reachable  *bool // nil when inconclusive (network error, 405, 5xx after retries)
	Err        error
}

// LinkChecker HEAD-checks live reference links concurrently
type LinkChecker struct {
	httpClient *http.Client
	userAgent  string
	maxWorkers int
}

// NewLinkChecker creates a checker using the outbound http settings
func NewLinkChecker(httpCfg model.HTTPConfig, timeout time.Duration, maxWorkers int) *LinkChecker {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ua := httpCfg.UserAgent
	if ua == "" {
		ua = model.DefaultUserAgent
	}

	return &LinkChecker{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy)},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return eris.New("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  ua,
		maxWorkers: maxWorkers,
	}
}

// Check returns a copy of refs with Reachable filled for every live, http(s)
// reference. Guidance entries are left unchecked.
func (c *LinkChecker) Check(ctx context.Context, refs []model.Reference) []model.Reference {
	out := make([]model.Reference, len(refs))
	copy(out, refs)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxWorkers)

	for i := range out {
		if out[i].Fallback || !strings.HasPrefix(out[i].SourceID, "http") {
			continue
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			out[idx].Reachable = c.checkWithRetry(ctx, out[idx].SourceID).Reachable
		}(i)
	}

	wg.Wait()
	return out
}

func (c *LinkChecker) checkOnce(ctx context.Context, link string) LinkStatus {
	status := LinkStatus{URL: link}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		status.Err = eris.Wrap(err, "create request")
		status.Reachable = boolPtr(false)
		return status
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status.Err = eris.Wrap(err, "request failed")
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	status.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		status.Reachable = boolPtr(true)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		status.Reachable = boolPtr(false)
	}
	return status
}

// checkWithRetry retries 429, 5xx and network failures with exponential backoff
func (c *LinkChecker) checkWithRetry(ctx context.Context, link string) LinkStatus {
	var status LinkStatus
	for attempt := 0; attempt < linkMaxAttempts; attempt++ {
		status = c.checkOnce(ctx, link)
		if !isRetryableLinkStatus(status) || ctx.Err() != nil {
			return status
		}
		if attempt < linkMaxAttempts-1 {
			linkSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return status
}

func isRetryableLinkStatus(s LinkStatus) bool {
	if s.StatusCode >= 500 || s.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return s.Err != nil && s.Reachable == nil
}

func boolPtr(b bool) *bool { return &b }
