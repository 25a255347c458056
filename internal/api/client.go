package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/coursarr/internal/extract"
)

const defaultCacheTTL = 10 * time.Minute

// Session is an already-established platform session. Obtaining one (login,
// token refresh) is outside this client's responsibility.
type Session struct {
	CSRFToken string
	Cookies   map[string]string
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry. A zero ExpiresAt
// means the session does not expire.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Client talks to the course platform with session cookies and a CSRF token
// attached to every request.
type Client struct {
	base       *url.URL
	session    *Session
	httpClient *http.Client
	cache      *cache
	rateDelay  time.Duration
	log        *slog.Logger

	mu       sync.Mutex
	lastSent time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCacheTTL sets the GET response cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = newCache(ttl) }
}

// WithRateLimit sets the minimum delay between requests.
func WithRateLimit(delay time.Duration) Option {
	return func(c *Client) { c.rateDelay = delay }
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a platform client for the given base URL.
func NewClient(baseURL string, session *Session, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	c := &Client{
		base:    base,
		session: session,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: newCache(defaultCacheTTL),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the platform base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Get fetches a platform resource and decodes it as JSON when the response
// says so, otherwise carries it as HTML. target may be a path or an absolute
// URL. Cached responses are served when useCache is set.
func (c *Client) Get(ctx context.Context, target string, params url.Values, useCache bool) (*extract.Content, error) {
	reqURL, err := c.resolveURL(target, params)
	if err != nil {
		return nil, err
	}

	if useCache {
		if content, ok := c.cache.get(reqURL); ok {
			c.log.Debug("cache hit", "url", reqURL)
			return content, nil
		}
	}

	content, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	if useCache {
		c.cache.set(reqURL, content)
	}
	return content, nil
}

// Post sends a form POST to a platform resource.
func (c *Client) Post(ctx context.Context, target string, form url.Values) (*extract.Content, error) {
	reqURL, err := c.resolveURL(target, nil)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
}

func (c *Client) resolveURL(target string, params url.Values) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse request url %q: %w", target, err)
	}
	u := c.base.ResolveReference(ref)
	if params != nil {
		q := u.Query()
		for key, vals := range params {
			for _, v := range vals {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, reqURL string, body io.Reader) (*extract.Content, error) {
	if c.session == nil || c.session.Expired() {
		return nil, fmt.Errorf("%w: session missing or expired", ErrAuthentication)
	}

	c.throttle(ctx)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-CSRFToken", c.session.CSRFToken)
	req.Header.Set("Referer", c.base.String())
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range c.session.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrAuthentication, reqURL)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, reqURL)
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: resp.StatusCode, URL: reqURL}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return decodeContent(reqURL, resp.Header.Get("Content-Type"), raw), nil
}

// decodeContent maps a response into the extractor's input shape: a JSON
// object payload when the body decodes as one, raw markup otherwise.
func decodeContent(reqURL, contentType string, raw []byte) *extract.Content {
	if strings.Contains(contentType, "application/json") {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err == nil {
			return &extract.Content{URL: reqURL, JSON: obj}
		}
	}
	return &extract.Content{URL: reqURL, HTML: string(raw)}
}

// throttle enforces the configured minimum delay between requests.
func (c *Client) throttle(ctx context.Context) {
	if c.rateDelay <= 0 {
		return
	}

	c.mu.Lock()
	now := time.Now()
	wait := c.lastSent.Add(c.rateDelay).Sub(now)
	if wait < 0 {
		wait = 0
	}
	// Reserve this request's slot so concurrent callers queue behind it.
	c.lastSent = now.Add(wait)
	c.mu.Unlock()

	if wait == 0 {
		return
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
