// Package google implements [hacktrack.IdentityProvider] with Google's OAuth2
// authorization-code flow.
//
// The backend authenticates requests with the Google ID token, so Exchange
// returns the token response's id_token as the session credential. The token
// is forwarded unmodified; its claims are decoded only for display.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fwojciec/hacktrack"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// Interface compliance check.
var _ hacktrack.IdentityProvider = (*Authenticator)(nil)

// ErrNoIDToken indicates the token response carried no id_token.
var ErrNoIDToken = errors.New("google: token response has no id_token")

// Scopes requested at sign-in. calendar.events lets the backend create
// reminders on the user's calendar.
var Scopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/calendar.events",
}

// Authenticator runs the OAuth2 sign-in against Google.
type Authenticator struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// Option configures an [Authenticator].
type Option func(*Authenticator)

// WithEndpoint overrides the OAuth2 endpoint. Useful for testing with httptest.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(a *Authenticator) { a.config.Endpoint = e }
}

// WithHTTPClient sets the HTTP client used for the code exchange.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Authenticator) { a.httpClient = hc }
}

// New creates an [Authenticator] for the given OAuth client.
func New(clientID, clientSecret, redirectURL string, opts ...Option) *Authenticator {
	a := &Authenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// SignInURL returns the consent page URL the user visits to sign in.
func (a *Authenticator) SignInURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's identity.
func (a *Authenticator) Exchange(ctx context.Context, code string) (hacktrack.Identity, error) {
	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return hacktrack.Identity{}, fmt.Errorf("google: exchange code: %w", err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return hacktrack.Identity{}, ErrNoIDToken
	}
	id, err := ParseIdentity(raw)
	if err != nil {
		// The backend verifies the token; an undecodable one still signs in.
		return hacktrack.Identity{Token: raw}, nil
	}
	return id, nil
}

// ParseIdentity decodes the display claims of a Google ID token without
// verifying its signature. The returned identity carries raw as its token.
func ParseIdentity(raw string) (hacktrack.Identity, error) {
	payload, err := idtoken.ParsePayload(raw)
	if err != nil {
		return hacktrack.Identity{}, fmt.Errorf("google: parse id token: %w", err)
	}
	return hacktrack.Identity{
		Token:   raw,
		Subject: payload.Subject,
		Email:   stringClaim(payload.Claims, "email"),
		Name:    stringClaim(payload.Claims, "name"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
