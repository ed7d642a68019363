// Package market looks up marketplace items by id.
package market

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"lotcheck/config"
	"lotcheck/logger"
	"lotcheck/metrics"
	"lotcheck/types"
)

// maxBodyBytes bounds how much of an item response is read.
const maxBodyBytes = 1 << 20

// Mode selects the upstream endpoint variant.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeSpecial Mode = "special"
)

// ParseMode validates a mode name. An empty name selects ModeDefault.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeDefault:
		return ModeDefault, nil
	case ModeSpecial:
		return ModeSpecial, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// ItemFetcher looks up one item. A nil snapshot is always paired with an error.
type ItemFetcher interface {
	FetchItem(ctx context.Context, id string, mode Mode) (*types.ItemSnapshot, error)
}

// Client is the upstream item lookup client. It is safe for concurrent use;
// all callers share one connection pool and one request budget.
type Client struct {
	baseURL    string
	token      string
	maxRetries int
	http       *retryablehttp.Client
	log        logger.Logger
	metrics    *metrics.Metrics
}

// NewClient builds a Client from cfg.
func NewClient(cfg config.MarketConfig, log logger.Logger, m *metrics.Metrics) *Client {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	maxPause := cfg.MaxRetryPause
	if maxPause < cfg.RetryPause {
		maxPause = cfg.RetryPause
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		maxRetries: cfg.MaxRetries,
		log:        log,
		metrics:    m,
	}

	rc := retryablehttp.NewClient()
	// The default logger prints request URLs, which carry the token.
	rc.Logger = nil
	// No http.Client.Timeout: its deadline would also cover the limiter wait.
	// limitedTransport times each attempt after it gets a token.
	rc.HTTPClient = &http.Client{
		Transport: &limitedTransport{
			base:    http.DefaultTransport,
			limiter: rate.NewLimiter(limit, burst),
			timeout: cfg.Timeout,
		},
	}
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = cfg.RetryPause
	rc.RetryWaitMax = maxPause
	rc.CheckRetry = retryOnRateLimit
	rc.Backoff = doublingBackoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = c.onAttempt
	rc.ResponseLogHook = c.onResponse
	c.http = rc

	return c
}

// FetchItem performs one logical lookup of id, retrying on 429 up to the
// configured cap. Failures are logged and returned; they never panic.
func (c *Client) FetchItem(ctx context.Context, id string, mode Mode) (*types.ItemSnapshot, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	start := time.Now()
	snap, err := c.fetch(ctx, id, mode)
	c.metrics.UpstreamLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.ObserveFailure(failureReason(err))
		c.log.Warn("Item lookup failed",
			logger.String("item_id", id),
			logger.String("mode", string(mode)),
			logger.Error(err),
		)
		return nil, err
	}
	return snap, nil
}

func (c *Client) fetch(ctx context.Context, id string, mode Mode) (*types.ItemSnapshot, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.itemURL(id, mode), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", redact(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, redact(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: read: %v", ErrMalformedBody, redact(err))
		}
		return parseItem(body)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w after %d retries", ErrRateLimited, c.maxRetries)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}

func (c *Client) itemURL(id string, mode Mode) string {
	u := c.baseURL + "/" + url.PathEscape(id)
	if mode == ModeSpecial {
		u += "/special"
	}
	return u + "?oauth_token=" + url.QueryEscape(c.token)
}

func (c *Client) onAttempt(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if attempt == 0 {
		return
	}
	c.metrics.UpstreamRetries.Inc()
	c.log.Info("Upstream rate limited, retrying",
		logger.String("path", req.URL.Path),
		logger.Int("attempt", attempt),
	)
}

func (c *Client) onResponse(_ retryablehttp.Logger, resp *http.Response) {
	c.metrics.ObserveResponse(resp.StatusCode)
}

// parseItem reads {"item": {"price", "item_state", "guarantee": {"active"}}}.
func parseItem(body []byte) (*types.ItemSnapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedBody)
	}
	item := gjson.GetBytes(body, "item")
	if !item.IsObject() {
		return nil, fmt.Errorf("%w: missing item", ErrMalformedBody)
	}

	price, err := parsePrice(item.Get("price"))
	if err != nil {
		return nil, err
	}

	switch state := types.ItemState(item.Get("item_state").String()); state {
	case types.ItemStatePaid:
		return &types.ItemSnapshot{
			Price:           price,
			State:           types.ItemStatePaid,
			GuaranteeActive: item.Get("guarantee.active").Bool(),
		}, nil
	case types.ItemStateActive:
		return &types.ItemSnapshot{Price: price, State: types.ItemStateActive}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
}

func parsePrice(v gjson.Result) (float64, error) {
	switch v.Type {
	case gjson.Number:
		return v.Num, nil
	case gjson.String:
		p, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: price %q", ErrMalformedBody, v.Str)
		}
		return p, nil
	default:
		return 0, fmt.Errorf("%w: missing price", ErrMalformedBody)
	}
}

// retryOnRateLimit retries only on 429. Transport errors and every other
// status are final.
func retryOnRateLimit(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return false, nil
	}
	return resp.StatusCode == http.StatusTooManyRequests, nil
}

// doublingBackoff waits min, 2*min, 4*min, ... capped at max.
func doublingBackoff(minWait, maxWait time.Duration, attempt int, _ *http.Response) time.Duration {
	wait := minWait
	for i := 0; i < attempt && wait < maxWait; i++ {
		wait *= 2
	}
	if wait > maxWait {
		wait = maxWait
	}
	return wait
}

// redact drops the request URL from transport errors so the token in the
// query string never reaches logs or callers.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request: %w", ue.Op, ue.Err)
	}
	return err
}

// limitedTransport waits on a shared token bucket before every attempt,
// bounded only by the caller's context. The attempt itself, body read
// included, is bounded by timeout.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
	timeout time.Duration
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	if t.timeout <= 0 {
		return t.base.RoundTrip(req)
	}

	ctx, cancel := context.WithTimeout(req.Context(), t.timeout)
	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelOnClose releases the attempt's timer once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
