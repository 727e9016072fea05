// Package randomuser is a read-only client for the random-user API.
//
// The client performs exactly one HTTP attempt per call. Retrying and caching are
// the caller's concern (see internal/query).
package randomuser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rshade/peoplegrid/internal/person"
)

// Client defaults.
const (
	DefaultBaseURL   = "https://randomuser.me/api"
	DefaultResults   = 20
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "peoplegrid"

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 16 << 20
)

// Params are the optional query parameters of a page request. Zero values are omitted,
// except Results which falls back to DefaultResults.
type Params struct {
	Page    int    `json:"page,omitempty"`
	Results int    `json:"results,omitempty"`
	Seed    string `json:"seed,omitempty"`
}

// Client fetches pages of people from a single configured endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *retryablehttp.Client
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying *http.Client (used by tests and for custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http.HTTPClient = hc }
}

// WithTimeout sets the per-request timeout. It works on a copy of the http.Client so a
// client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http.HTTPClient
			hc.Timeout = d
			c.http.HTTPClient = &hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
		c.http.Logger = zerologLeveled{l: l}
	}
}

// New returns a Client for DefaultBaseURL unless overridden.
func New(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.CheckRetry = func(context.Context, *http.Response, error) (bool, error) { return false, nil }
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient = &http.Client{Timeout: DefaultTimeout}

	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		http:      rc,
		logger:    zerolog.Nop(),
	}
	rc.Logger = zerologLeveled{l: c.logger}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchPage requests one page. Parameters are passed through as given; the server
// applies its own defaults for anything omitted.
func (c *Client) FetchPage(ctx context.Context, p Params) (*person.Page, error) {
	q := url.Values{}
	if p.Page != 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	results := p.Results
	if results == 0 {
		results = DefaultResults
	}
	q.Set("results", strconv.Itoa(results))
	if p.Seed != "" {
		q.Set("seed", p.Seed)
	}
	return c.get(ctx, q)
}

// FetchByGender requests DefaultResults people of the given gender. The filter is
// applied server-side.
func (c *Client) FetchByGender(ctx context.Context, g person.Gender) (*person.Page, error) {
	q := url.Values{}
	q.Set("results", strconv.Itoa(DefaultResults))
	q.Set("gender", string(g))
	return c.get(ctx, q)
}

func (c *Client) get(ctx context.Context, q url.Values) (*person.Page, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Op: "rate limit", Err: err}
		}
	}

	endpoint := c.baseURL + "/?" + q.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Ctx(ctx).Err(err).Str("url", endpoint).Msg("request failed")
		return nil, &NetworkError{Op: "GET " + c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().Ctx(ctx).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: "reading response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}

	var page person.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &NetworkError{Op: "decoding response", Err: err}
	}
	return &page, nil
}

// apiErrorMessage extracts {"error": "..."} from an error body.
func apiErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

// IsRetryable reports whether err came from this client. Both taxonomy members are
// transient from the caller's point of view, including transport timeouts. Anything
// else (a bare context cancellation, bad request construction) is not.
func IsRetryable(err error) bool {
	var ne *NetworkError
	var se *ServerError
	return errors.As(err, &ne) || errors.As(err, &se)
}
