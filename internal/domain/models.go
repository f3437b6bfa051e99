package domain

import (
	"fmt"
	"strings"
	"time"
)

// Domain contains core models shared by the client, the probe and publishers.

// Profile is a user object as returned by the users/* endpoints.
type Profile struct {
	ID                   int64  `json:"id"`
	IDStr                string `json:"id_str"`
	Name                 string `json:"name"`
	ScreenName           string `json:"screen_name"`
	Location             string `json:"location,omitempty"`
	Description          string `json:"description,omitempty"`
	URL                  string `json:"url,omitempty"`
	Protected            bool   `json:"protected"`
	Verified             bool   `json:"verified"`
	FollowersCount       int    `json:"followers_count"`
	FriendsCount         int    `json:"friends_count"`
	ListedCount          int    `json:"listed_count"`
	StatusesCount        int    `json:"statuses_count"`
	CreatedAt            string `json:"created_at,omitempty"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https,omitempty"`
	Status               *Tweet `json:"status,omitempty"`
}

// Tweet is the latest status embedded in a profile.
type Tweet struct {
	IDStr     string `json:"id_str"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at,omitempty"`
	Source    string `json:"source,omitempty"`
}

// APIError is one entry of an `errors` array.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("twitter api error %d: %s", e.Code, e.Message)
}

// Error codes documented for the users endpoints.
const (
	ErrCodeNoUserMatches = 17
	ErrCodeNotFound      = 34
	ErrCodeUserNotFound  = 50
	ErrCodeSuspended     = 64
	ErrCodeRateLimited   = 88
)

// AccountStatus is the resolved state of a screen name.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
	StatusNotFound  AccountStatus = "not_found"
	StatusUnknown   AccountStatus = "unknown"
)

// ParseAccountStatus maps stored text back to an AccountStatus.
func ParseAccountStatus(raw string) (AccountStatus, bool) {
	switch s := AccountStatus(strings.TrimSpace(raw)); s {
	case StatusActive, StatusSuspended, StatusNotFound, StatusUnknown:
		return s, true
	default:
		return "", false
	}
}

// AccountState is the outcome of checking one screen name.
type AccountState struct {
	ScreenName string        `json:"screen_name"`
	Status     AccountStatus `json:"status"`
	Profile    *Profile      `json:"profile,omitempty"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// NormalizeScreenName trims a leading @ and whitespace and lower-cases the name.
func NormalizeScreenName(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
}
