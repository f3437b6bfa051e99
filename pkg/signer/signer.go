// Package signer signs outbound requests with one-legged OAuth1 (HMAC-SHA1)
// using a consumer key pair and a pre-issued access token.
package signer

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mrjones/oauth"
)

// Credentials are the four static secrets used to sign every request.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Validate reports the first missing credential.
func (c Credentials) Validate() error {
	switch {
	case strings.TrimSpace(c.ConsumerKey) == "":
		return errors.New("consumer key is required")
	case strings.TrimSpace(c.ConsumerSecret) == "":
		return errors.New("consumer secret is required")
	case strings.TrimSpace(c.AccessToken) == "":
		return errors.New("access token is required")
	case strings.TrimSpace(c.AccessTokenSecret) == "":
		return errors.New("access token secret is required")
	}
	return nil
}

// String keeps secrets out of formatted output.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ConsumerKey:%s, AccessToken:%s}", mask(c.ConsumerKey), mask(c.AccessToken))
}

func mask(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return v[:4] + "****"
}

// NewRoundTripper returns an http.RoundTripper that adds an OAuth1
// Authorization header to each request before handing it to base.
// A nil base uses http.DefaultTransport.
func NewRoundTripper(creds Credentials, base http.RoundTripper) (http.RoundTripper, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		base = http.DefaultTransport
	}

	// No request/authorize/access URLs: the access token is issued out of band.
	consumer := oauth.NewCustomHttpClientConsumer(
		creds.ConsumerKey,
		creds.ConsumerSecret,
		oauth.ServiceProvider{},
		&http.Client{Transport: base},
	)

	rt, err := consumer.MakeRoundTripper(&oauth.AccessToken{
		Token:  creds.AccessToken,
		Secret: creds.AccessTokenSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("build oauth round tripper: %w", err)
	}
	return rt, nil
}
