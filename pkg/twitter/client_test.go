package twitter

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
	"github.com/Adda-Baaj/handle-probe/pkg/httpclient"
	"github.com/Adda-Baaj/handle-probe/pkg/signer"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter/twittertest"
)

var testCreds = signer.Credentials{
	ConsumerKey:       "ck",
	ConsumerSecret:    "cs",
	AccessToken:       "at",
	AccessTokenSecret: "ats",
}

func newTestClient(t *testing.T) (*Client, *twittertest.Server) {
	t.Helper()
	srv := twittertest.NewSeededServer()
	srv.RequireAuth = true
	t.Cleanup(srv.Close)

	client, err := New(testCreds, Options{BaseURL: srv.BaseURL(), Timeout: 2 * time.Second}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, srv
}

func screenNames(profiles []domain.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ScreenName)
	}
	return out
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	if _, err := New(signer.Credentials{ConsumerKey: "ck"}, Options{}, nil); err == nil {
		t.Fatalf("expected error for incomplete credentials")
	}
}

func TestRequestsAreSigned(t *testing.T) {
	client, srv := newTestClient(t)

	res, err := client.Show(context.Background(), "neworganizing")
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if res.Kind != KindProfile {
		t.Fatalf("expected profile, got %s (%s)", res.Kind, res.Raw)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected exactly one round trip, got %d", len(reqs))
	}
	auth := reqs[0].Authorization
	if !strings.HasPrefix(auth, "OAuth ") || !strings.Contains(auth, `oauth_consumer_key="ck"`) || !strings.Contains(auth, `oauth_token="at"`) {
		t.Fatalf("unexpected Authorization header %q", auth)
	}
	if reqs[0].Path != "/1.1/users/show.json" || reqs[0].Query["screen_name"] != "neworganizing" {
		t.Fatalf("unexpected request %+v", reqs[0])
	}
}

func TestLookupSingleNameReturnsAtMostOneProfile(t *testing.T) {
	client, _ := newTestClient(t)

	for _, name := range []string{"neworganizing", "doritosloaded", "NOITOOLBOX"} {
		res, err := client.Lookup(context.Background(), name)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", name, err)
		}
		if res.Kind != KindProfileList || len(res.Profiles) > 1 {
			t.Fatalf("Lookup(%s) = %s with %d profiles", name, res.Kind, len(res.Profiles))
		}
	}
}

func TestLookupOmitsSuspendedAndUnregistered(t *testing.T) {
	client, _ := newTestClient(t)

	requested := []string{"neworganizing", "_a", "doritosloaded", "lkjawer9"}
	res, err := client.Lookup(context.Background(), requested...)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Kind != KindProfileList {
		t.Fatalf("expected profile list, got %s", res.Kind)
	}
	if len(res.Profiles) > len(requested) {
		t.Fatalf("result longer than request: %d", len(res.Profiles))
	}
	got := screenNames(res.Profiles)
	want := []string{"neworganizing", "doritosloaded"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lookup returned %v, want %v", got, want)
	}
}

func TestLookupAllMissingReturnsErrorObject(t *testing.T) {
	client, _ := newTestClient(t)

	res, err := client.Lookup(context.Background(), "_a", "lkjawer9")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !res.HasErrorCode(domain.ErrCodeNotFound) {
		t.Fatalf("expected code 34, got %+v", res)
	}
}

func TestShowSuspendedAndUnregistered(t *testing.T) {
	client, _ := newTestClient(t)

	res, err := client.Show(context.Background(), "_a")
	if err != nil {
		t.Fatalf("Show(_a): %v", err)
	}
	if res.Kind != KindAPIError || !res.HasErrorCode(domain.ErrCodeSuspended) {
		t.Fatalf("expected code 64 for suspended account, got %+v", res)
	}
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", res.StatusCode)
	}

	res, err = client.Show(context.Background(), "lkjawer9")
	if err != nil {
		t.Fatalf("Show(lkjawer9): %v", err)
	}
	if !res.HasErrorCode(domain.ErrCodeNotFound) {
		t.Fatalf("expected code 34 for unregistered account, got %+v", res)
	}
}

func TestSearchRespectsCount(t *testing.T) {
	client, srv := newTestClient(t)

	res, err := client.Search(context.Background(), "Senator Chuck Grassley", 1, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Kind != KindProfileList || len(res.Profiles) > 5 {
		t.Fatalf("unexpected search result %s with %d profiles", res.Kind, len(res.Profiles))
	}
	if len(res.Profiles) == 0 || res.Profiles[0].ScreenName != "ChuckGrassley" {
		t.Fatalf("expected best match first, got %v", screenNames(res.Profiles))
	}
	q := srv.Requests()[0].Query
	if q["page"] != "1" || q["count"] != "5" || q["q"] != "Senator Chuck Grassley" {
		t.Fatalf("unexpected search query %v", q)
	}

	res, err = client.Search(context.Background(), "Senator Chuck Grassley", 1, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Profiles) > 2 {
		t.Fatalf("count=2 returned %d profiles", len(res.Profiles))
	}
}

func TestLookupIsIdempotent(t *testing.T) {
	client, _ := newTestClient(t)

	first, err := client.Lookup(context.Background(), "neworganizing", "noitoolbox", "doritosloaded")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	second, err := client.Lookup(context.Background(), "neworganizing", "noitoolbox", "doritosloaded")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !reflect.DeepEqual(first.Profiles, second.Profiles) {
		t.Fatalf("lookups differ:\n%v\n%v", first.Profiles, second.Profiles)
	}
}

func TestRateLimitHeadersSurfaced(t *testing.T) {
	client, _ := newTestClient(t)

	res, err := client.Show(context.Background(), "neworganizing")
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if !res.RateLimit.Present || res.RateLimit.Limit != 900 || res.RateLimit.Remaining != 899 {
		t.Fatalf("unexpected rate limit %+v", res.RateLimit)
	}
}

func TestUnsignedRequestIsReturnedAsAPIError(t *testing.T) {
	srv := twittertest.NewSeededServer()
	srv.RequireAuth = true
	defer srv.Close()

	client, err := NewWithHTTPClient(httpclient.NewRestyClient(httpclient.Options{Timeout: time.Second}), srv.BaseURL(), nil)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	res, err := client.Show(context.Background(), "neworganizing")
	if err != nil {
		t.Fatalf("HTTP error statuses must not be Go errors: %v", err)
	}
	if !res.HasErrorCode(215) || res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	srv := twittertest.NewServer()
	base := srv.BaseURL()
	srv.Close()

	client, err := New(testCreds, Options{BaseURL: base, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Lookup(context.Background(), "neworganizing"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestCancelledContextFails(t *testing.T) {
	client, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Show(ctx, "neworganizing"); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

type stubResponse struct {
	body   []byte
	status int
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return nil }

type stubHTTPClient struct {
	resp stubResponse
}

func (s stubHTTPClient) Get(context.Context, string, map[string]string, map[string]string) (httpclient.Response, error) {
	return s.resp, nil
}

func TestUndecodableBodyIsError(t *testing.T) {
	client, err := NewWithHTTPClient(stubHTTPClient{resp: stubResponse{body: []byte("<html>oops</html>"), status: 502}}, "", nil)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	_, err = client.Search(context.Background(), "x", 1, 5)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected decode error mentioning status, got %v", err)
	}
}
