package twitter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adda-Baaj/handle-probe/internal/domain"
)

// Kind tags which shape a decoded response has.
type Kind int

const (
	KindUnknown Kind = iota
	KindProfileList
	KindProfile
	KindAPIError
)

func (k Kind) String() string {
	switch k {
	case KindProfileList:
		return "profile_list"
	case KindProfile:
		return "profile"
	case KindAPIError:
		return "api_error"
	default:
		return "unknown"
	}
}

// Result is a decoded response. Exactly one of Profiles, Profile or Errors is
// meaningful, selected by Kind.
type Result struct {
	Kind       Kind
	Profiles   []domain.Profile
	Profile    *domain.Profile
	Errors     []domain.APIError
	StatusCode int
	RateLimit  RateLimit
	Raw        json.RawMessage
}

// RateLimit carries the x-rate-limit-* response headers. Zero values mean the
// header was absent.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
	Present   bool
}

// HasErrorCode reports whether the result is an API error with the given code.
func (r *Result) HasErrorCode(code int) bool {
	if r == nil || r.Kind != KindAPIError {
		return false
	}
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// FirstError returns the first API error entry, if any.
func (r *Result) FirstError() (domain.APIError, bool) {
	if r == nil || r.Kind != KindAPIError || len(r.Errors) == 0 {
		return domain.APIError{}, false
	}
	return r.Errors[0], true
}

// RateLimited reports an HTTP 429 or an error code 88 response.
func (r *Result) RateLimited() bool {
	if r == nil {
		return false
	}
	return r.StatusCode == http.StatusTooManyRequests || r.HasErrorCode(domain.ErrCodeRateLimited)
}

// errorEnvelope matches both the `errors` array and the legacy `error` string.
type errorEnvelope struct {
	Errors json.RawMessage `json:"errors"`
	Error  *string         `json:"error"`
}

var errEmptyBody = errors.New("empty response body")

// Decode turns a raw response body into a tagged Result.
func Decode(body []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errEmptyBody
	}

	res := &Result{Raw: json.RawMessage(trimmed)}

	switch trimmed[0] {
	case '[':
		var profiles []domain.Profile
		if err := json.Unmarshal(trimmed, &profiles); err != nil {
			return nil, fmt.Errorf("decode profile list: %w", err)
		}
		if profiles == nil {
			profiles = []domain.Profile{}
		}
		res.Kind = KindProfileList
		res.Profiles = profiles
		return res, nil
	case '{':
		var env errorEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode response object: %w", err)
		}
		if apiErrs, ok, err := decodeErrors(env); err != nil {
			return nil, err
		} else if ok {
			res.Kind = KindAPIError
			res.Errors = apiErrs
			return res, nil
		}
		var profile domain.Profile
		if err := json.Unmarshal(trimmed, &profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		res.Kind = KindProfile
		res.Profile = &profile
		return res, nil
	default:
		return nil, fmt.Errorf("unexpected json value starting with %q", trimmed[0])
	}
}

func decodeErrors(env errorEnvelope) ([]domain.APIError, bool, error) {
	raw := bytes.TrimSpace(env.Errors)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var apiErrs []domain.APIError
		if err := json.Unmarshal(raw, &apiErrs); err != nil {
			return nil, false, fmt.Errorf("decode errors: %w", err)
		}
		if len(apiErrs) > 0 {
			return apiErrs, true, nil
		}
	}
	if env.Error != nil && strings.TrimSpace(*env.Error) != "" {
		return []domain.APIError{{Message: strings.TrimSpace(*env.Error)}}, true, nil
	}
	return nil, false, nil
}

func parseRateLimit(h http.Header) RateLimit {
	var rl RateLimit
	if h == nil {
		return rl
	}
	if v, err := strconv.Atoi(h.Get("x-rate-limit-limit")); err == nil {
		rl.Limit = v
		rl.Present = true
	}
	if v, err := strconv.Atoi(h.Get("x-rate-limit-remaining")); err == nil {
		rl.Remaining = v
		rl.Present = true
	}
	if v, err := strconv.ParseInt(h.Get("x-rate-limit-reset"), 10, 64); err == nil && v > 0 {
		rl.Reset = time.Unix(v, 0).UTC()
		rl.Present = true
	}
	return rl
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
