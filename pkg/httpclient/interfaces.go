package httpclient

import (
	"context"
	"net/http"
)

// Response is what callers read back from a request: status, headers and
// the fully buffered body.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client performs GET requests. The twitter client depends on this rather
// than on resty so tests can substitute canned responses.
type Client interface {
	Get(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error)
}
