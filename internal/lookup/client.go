package lookup

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/util"
	"github.com/ppiankov/newsintel/internal/worker"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LegacyUserAgent identifies lookup traffic when no user agent is configured
const LegacyUserAgent = "News-Intelligence-Analyzer/1.2"

// Client is the HTTP client shared by the live backends: proxy aware,
// per-host rate limited, body size capped
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
}

// NewClient builds a client from the http and rate_limiting sections
func NewClient(httpCfg model.HTTPConfig, rl model.RateLimitingConfig) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy)
	if httpCfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via config
	}

	ua := httpCfg.UserAgent
	if ua == "" {
		ua = LegacyUserAgent
	}
	maxBytes := httpCfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: httpCfg.Timeout},
		userAgent:  ua,
		maxBytes:   maxBytes,
		limiter:    worker.NewLimiterFromConfig(rl),
	}
}

// Get fetches rawURL and returns the body of a 2xx answer
func (c *Client) Get(ctx context.Context, backend, rawURL, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, classify(ctx, eris.Wrapf(err, "%s: rate limit", backend))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: create request", backend)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, eris.Wrapf(err, "%s: request", backend))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Backend: backend, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, classify(ctx, eris.Wrapf(err, "%s: read body", backend))
	}
	zap.L().Debug("lookup request",
		zap.String("backend", backend),
		zap.String("url", rawURL),
		zap.Duration("took", time.Since(start)),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}

// GetJSON fetches rawURL and decodes a JSON answer into v
func (c *Client) GetJSON(ctx context.Context, backend, rawURL string, v any) error {
	body, err := c.Get(ctx, backend, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return eris.Wrapf(err, "%s: decode response", backend)
	}
	return nil
}

// classify maps a deadline on ctx to ErrTimeout so callers can report it
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return eris.Wrap(ErrTimeout, err.Error())
	}
	return err
}
