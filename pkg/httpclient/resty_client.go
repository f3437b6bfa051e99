package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent identifies outbound requests when Options.UserAgent is empty.
const DefaultUserAgent = "handle-probe/1.0"

// Options configures the resty-backed clients.
type Options struct {
	Timeout time.Duration
	// Transport replaces the default round tripper, e.g. with a signing one.
	Transport http.RoundTripper
	UserAgent string
}

// RestyClient implements Client on top of resty.
type RestyClient struct {
	resty *resty.Client
}

// NewRestyClient builds a Client from opts.
func NewRestyClient(opts Options) *RestyClient {
	return &RestyClient{resty: NewResty(opts)}
}

// NewResty returns the underlying resty client for callers that need verbs
// other than GET or request bodies.
func NewResty(opts Options) *resty.Client {
	c := resty.New().SetTimeout(opts.Timeout)
	if opts.Transport != nil {
		c.SetTransport(opts.Transport)
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return c.SetHeader("User-Agent", ua)
}

// Get issues a GET with query parameters and extra headers. Non-2xx statuses
// are returned as responses, not errors.
func (r *RestyClient) Get(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error) {
	resp, err := r.resty.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp}, nil
}

// restyResponse satisfies Response through the embedded resty accessors.
type restyResponse struct {
	*resty.Response
}
