package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
)

func buildWebhook(t *testing.T, hc HTTPPublisherConfig) Publisher {
	t.Helper()
	cfg := PublisherConfig{ID: "hook", Type: TypeHTTP, HTTP: &hc}
	cfg.normalize()
	pub, err := newHTTPPublisher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}
	return pub
}

func TestWebhookDeliversEventAsJSON(t *testing.T) {
	var (
		got     Event
		eventID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer t0k" {
			t.Errorf("configured header missing")
		}
		eventID = r.Header.Get("X-Event-ID")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pub := buildWebhook(t, HTTPPublisherConfig{
		URL:     srv.URL,
		Method:  "put",
		Headers: map[string]string{"Authorization": "Bearer t0k", " ": "dropped"},
	})
	evt := Event{ID: "e1", ScreenName: "_a", PreviousStatus: domain.StatusActive, CurrentStatus: domain.StatusSuspended}
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if eventID != "e1" || got.ScreenName != "_a" || got.CurrentStatus != domain.StatusSuspended {
		t.Fatalf("unexpected delivery id=%q body=%+v", eventID, got)
	}
}

func TestWebhookRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	pub := buildWebhook(t, HTTPPublisherConfig{URL: srv.URL, TimeoutSeconds: 1})
	if err := pub.Publish(context.Background(), Event{ID: "e2"}); err == nil {
		t.Fatalf("expected error on 400")
	}
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub := buildWebhook(t, HTTPPublisherConfig{URL: srv.URL, Retries: 2})
	if err := pub.Publish(context.Background(), Event{ID: "e3"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected one retry, got %d calls", n)
	}
}
