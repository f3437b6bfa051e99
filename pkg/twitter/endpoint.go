package twitter

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the REST API v1.1 root.
const DefaultBaseURL = "https://api.twitter.com/1.1/"

// MaxLookupBatch is the most screen names users/lookup accepts per request.
const MaxLookupBatch = 100

// Endpoint identifies one of the fixed user endpoints.
type Endpoint int

const (
	// Lookup returns profiles for up to 100 screen names, silently omitting
	// unknown and suspended accounts.
	Lookup Endpoint = iota + 1
	// Show returns a single profile, or an error object for missing accounts.
	Show
	// Search returns profiles ranked by similarity to a free-text query.
	Search
)

func (e Endpoint) String() string {
	switch e {
	case Lookup:
		return "lookup"
	case Show:
		return "show"
	case Search:
		return "search"
	default:
		return fmt.Sprintf("endpoint(%d)", int(e))
	}
}

// Path is the endpoint path relative to the API root.
func (e Endpoint) Path() (string, error) {
	switch e {
	case Lookup:
		return "users/lookup.json", nil
	case Show:
		return "users/show.json", nil
	case Search:
		return "users/search.json", nil
	default:
		return "", fmt.Errorf("unknown endpoint %s", e)
	}
}

// Query maps parameter names to values. It is built fresh per call.
type Query map[string]string

func resolveEndpoint(base *url.URL, e Endpoint) (string, error) {
	path, err := e.Path()
	if err != nil {
		return "", err
	}
	return base.ResolveReference(&url.URL{Path: path}).String(), nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", raw)
	}
	return u, nil
}
