package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vmunix/marquee/internal/resilience"
)

const (
	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"

	// TransportTimeout bounds a whole HTTP exchange, independent of the
	// per-attempt resilience timeout.
	TransportTimeout = 30 * time.Second

	maxErrorBody = 512
)

// Client is a TMDB API client. Every call goes through the resilience policy.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     resilience.Policy
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPolicy replaces the default retry/timeout policy.
func WithPolicy(p resilience.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.With("component", "tmdb")
		}
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout:   TransportTimeout,
			Transport: NewTransport(nil),
		},
		policy: resilience.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log != nil && c.policy.OnRetry == nil {
		log := c.log
		c.policy.OnRetry = func(attempt uint, err error) {
			log.Debug("upstream attempt failed", "attempt", attempt, "error", err)
		}
	}
	return c
}

// Get fetches endpoint (relative to the base URL, e.g. "movie/popular") with
// params and decodes the JSON body into out. The api_key parameter is added
// here and never needs to be part of params.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, out any) error {
	start := time.Now()
	target := c.endpointURL(endpoint, params)

	call := resilience.Wrap(c.policy, func(ctx context.Context) ([]byte, error) {
		return c.fetch(ctx, target)
	})
	body, err := call(ctx)
	if err != nil {
		if c.log != nil && ctx.Err() == nil {
			c.log.Debug("upstream request failed", "endpoint", endpoint, "error", err, "duration_ms", time.Since(start).Milliseconds())
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w: %w", endpoint, ErrMalformed, err)
	}

	if c.log != nil {
		c.log.Debug("upstream request", "endpoint", endpoint, "bytes", len(body), "duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}

func (c *Client) endpointURL(endpoint string, params url.Values) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", c.apiKey)
	return c.baseURL + "/" + strings.TrimPrefix(endpoint, "/") + "?" + q.Encode()
}

// fetch performs exactly one HTTP exchange and classifies the outcome.
func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, resilience.Transient(fmt.Errorf("%w: %v", ErrRateLimited, err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, resilience.Transient(fmt.Errorf("execute request: %w", c.redact(err)))
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, resilience.Transient(fmt.Errorf("read body: %w", c.redact(err)))
	}
	return body, nil
}

// redact strips the api key from URLs embedded in transport errors.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && c.apiKey != "" {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(c.apiKey), "REDACTED")
	}
	return err
}

// checkResponse maps non-2xx responses to errors. Rate limiting and 5xx are
// transient; everything else is permanent.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &StatusError{
		Code:   resp.StatusCode,
		Status: resp.Status,
		Wait:   parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		statusErr.Message = body.StatusMessage
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		statusErr.Err = ErrNotFound
		return statusErr
	case resp.StatusCode == http.StatusUnauthorized:
		statusErr.Err = ErrUnauthorized
		return statusErr
	case resp.StatusCode == http.StatusTooManyRequests:
		statusErr.Err = ErrRateLimited
		return resilience.Transient(statusErr)
	case resp.StatusCode >= 500:
		return resilience.Transient(statusErr)
	default:
		return statusErr
	}
}
