package twitter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/handle-probe/pkg/httpclient"
	"github.com/Adda-Baaj/handle-probe/pkg/signer"
)

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}

// Options configures a signed client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

const defaultTimeout = 15 * time.Second

// Client issues signed GET requests against the user endpoints and decodes
// the responses. It holds no per-request state.
type Client struct {
	http httpclient.Client
	base *url.URL
	log  Logger
}

// New builds a Client that signs every request with creds.
func New(creds signer.Credentials, opts Options, log Logger) (*Client, error) {
	rt, err := signer.NewRoundTripper(creds, nil)
	if err != nil {
		return nil, fmt.Errorf("init signer: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewWithHTTPClient(httpclient.NewRestyClient(httpclient.Options{Timeout: timeout, Transport: rt}), opts.BaseURL, log)
}

// NewWithHTTPClient builds a Client on top of an existing transport. The
// transport is responsible for signing.
func NewWithHTTPClient(client httpclient.Client, baseURL string, log Logger) (*Client, error) {
	if client == nil {
		return nil, fmt.Errorf("http client must not be nil")
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Client{http: client, base: base, log: log}, nil
}

// Get sends one request to endpoint with query and decodes the body. HTTP
// error statuses are not Go errors: the decoded body (usually an APIError
// result) is returned for the caller to inspect. Transport failures and
// undecodable bodies are returned as errors.
func (c *Client) Get(ctx context.Context, endpoint Endpoint, query Query) (*Result, error) {
	target, err := resolveEndpoint(c.base, endpoint)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Get(ctx, target, query, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}

	res, err := Decode(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%s response status %d: %w: %s", endpoint, resp.StatusCode(), err, bodySnippet(resp.Body()))
	}
	res.StatusCode = resp.StatusCode()
	res.RateLimit = parseRateLimit(resp.Header())

	c.log.DebugObj("twitter request completed", "twitter_request", map[string]any{
		"endpoint":             endpoint.String(),
		"status":               res.StatusCode,
		"kind":                 res.Kind.String(),
		"rate_limit_remaining": res.RateLimit.Remaining,
	})
	return res, nil
}

// Lookup fetches profiles for screenNames in one request. Unknown and
// suspended accounts are omitted from the returned list.
func (c *Client) Lookup(ctx context.Context, screenNames ...string) (*Result, error) {
	return c.Get(ctx, Lookup, Query{"screen_name": strings.Join(screenNames, ",")})
}

// Show fetches a single profile.
func (c *Client) Show(ctx context.Context, screenName string) (*Result, error) {
	return c.Get(ctx, Show, Query{"screen_name": screenName})
}

// Search runs a free-text user search.
func (c *Client) Search(ctx context.Context, q string, page, count int) (*Result, error) {
	return c.Get(ctx, Search, Query{
		"q":     q,
		"page":  strconv.Itoa(page),
		"count": strconv.Itoa(count),
	})
}
