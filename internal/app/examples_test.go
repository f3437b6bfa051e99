package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Adda-Baaj/handle-probe/pkg/signer"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter/twittertest"
)

func newSeededClient(t *testing.T) (*twitter.Client, *twittertest.Server) {
	t.Helper()
	srv := twittertest.NewSeededServer()
	srv.RequireAuth = true
	t.Cleanup(srv.Close)

	client, err := twitter.New(signer.Credentials{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
	}, twitter.Options{BaseURL: srv.BaseURL(), Timeout: 2 * time.Second}, nil)
	if err != nil {
		t.Fatalf("twitter.New: %v", err)
	}
	return client, srv
}

func TestExamplesRunPrintsEveryScenario(t *testing.T) {
	client, srv := newSeededClient(t)

	var out bytes.Buffer
	if err := NewExamples(client, nil, nil).Run(context.Background(), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := len(srv.Requests()); n != len(DefaultScenarios()) {
		t.Fatalf("expected %d requests, got %d", len(DefaultScenarios()), n)
	}

	text := out.String()
	for _, sc := range DefaultScenarios() {
		for _, title := range sc.Titles {
			if !strings.Contains(text, title+"\n") {
				t.Fatalf("missing title %q in output", title)
			}
		}
	}
	if !strings.Contains(text, `"code": 64`) {
		t.Fatalf("expected suspended error body in output")
	}
	if !strings.Contains(text, `"code": 34`) {
		t.Fatalf("expected not found error body in output")
	}
	if !strings.HasPrefix(text, "Basic lookup for a single user: neworganizing\n----") {
		t.Fatalf("unexpected heading:\n%s", text[:80])
	}
}

func TestExamplesRunRuleLengths(t *testing.T) {
	client, _ := newSeededClient(t)

	var out bytes.Buffer
	if err := NewExamples(client, nil, nil).Run(context.Background(), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	want := []int{45, 57, 67, 35, 46, 56, 45, 53}
	var got []int
	for _, line := range lines {
		if line != "" && strings.Trim(line, "-") == "" {
			got = append(got, len(line))
		}
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rules, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scenario %d: rule has %d dashes, want %d", i+1, got[i], want[i])
		}
	}
}

func TestExamplesRunCustomScenario(t *testing.T) {
	client, _ := newSeededClient(t)

	var out bytes.Buffer
	scenarios := []Scenario{{Titles: []string{"abc"}, Endpoint: twitter.Show, Query: twitter.Query{"screen_name": "noitoolbox"}}}
	if err := NewExamples(client, scenarios, nil).Run(context.Background(), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	if lines[0] != "abc" || lines[1] != "---" || lines[2] != "{" {
		t.Fatalf("unexpected output %q", out.String())
	}
	if !strings.Contains(out.String(), `  "screen_name": "noitoolbox"`) {
		t.Fatalf("body not indented: %s", out.String())
	}
}

type failingRequester struct{}

func (failingRequester) Get(context.Context, twitter.Endpoint, twitter.Query) (*twitter.Result, error) {
	return nil, errors.New("connection refused")
}

func TestExamplesRunStopsOnTransportError(t *testing.T) {
	var out bytes.Buffer
	err := NewExamples(failingRequester{}, nil, nil).Run(context.Background(), &out)
	if err == nil || !strings.Contains(err.Error(), "scenario 1") {
		t.Fatalf("expected scenario 1 error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should be written on failure, got %q", out.String())
	}
}
