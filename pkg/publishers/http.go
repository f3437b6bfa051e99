package publishers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Adda-Baaj/handle-probe/pkg/httpclient"
	"github.com/go-resty/resty/v2"
)

// webhookPublisher posts events as JSON to an HTTP endpoint.
type webhookPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	hc := cfg.HTTP
	if hc == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	client := httpclient.NewResty(httpclient.Options{Timeout: time.Duration(hc.TimeoutSeconds) * time.Second})
	if hc.Retries > 0 {
		client.SetRetryCount(hc.Retries).
			SetRetryWaitTime(250 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			})
	}

	return &webhookPublisher{
		id:      cfg.ID,
		method:  hc.Method,
		url:     hc.URL,
		headers: hc.Headers,
		client:  client,
		log:     ensureLogger(log),
	}, nil
}

func (h *webhookPublisher) ID() string   { return h.id }
func (h *webhookPublisher) Type() string { return TypeHTTP }

// Publish sends evt as the request body. Any non-2xx status is an error.
func (h *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeaders(h.headers).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Event-ID", evt.ID).
		SetBody(evt).
		Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("%s %s: %w", h.method, h.url, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%s %s: status %d: %s", h.method, h.url, resp.StatusCode(), snippet(resp.Body()))
	}

	h.log.DebugObj("webhook accepted status event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"event_id":     evt.ID,
		"screen_name":  evt.ScreenName,
		"status":       resp.StatusCode(),
	})
	return nil
}

func snippet(body []byte) string {
	const limit = 512
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.TrimSpace(string(body))
}
