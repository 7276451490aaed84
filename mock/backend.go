// Package mock provides test doubles for hacktrack interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/hacktrack"
)

// Interface compliance checks.
var (
	_ hacktrack.Backend          = (*Backend)(nil)
	_ hacktrack.Sharer           = (*Sharer)(nil)
	_ hacktrack.IdentityProvider = (*IdentityProvider)(nil)
)

// Backend is a test double for hacktrack.Backend.
// Set the function fields for the methods you need. Unset fields panic to
// catch missing setup.
type Backend struct {
	ChatFn        func(ctx context.Context, message string) (hacktrack.ChatReply, error)
	SaveEventFn   func(ctx context.Context, eventID string) error
	SavedEventsFn func(ctx context.Context) ([]hacktrack.Event, error)
	SetReminderFn func(ctx context.Context, eventID string) error
}

// Chat delegates to ChatFn.
func (b *Backend) Chat(ctx context.Context, message string) (hacktrack.ChatReply, error) {
	return b.ChatFn(ctx, message)
}

// SaveEvent delegates to SaveEventFn.
func (b *Backend) SaveEvent(ctx context.Context, eventID string) error {
	return b.SaveEventFn(ctx, eventID)
}

// SavedEvents delegates to SavedEventsFn.
func (b *Backend) SavedEvents(ctx context.Context) ([]hacktrack.Event, error) {
	return b.SavedEventsFn(ctx)
}

// SetReminder delegates to SetReminderFn.
func (b *Backend) SetReminder(ctx context.Context, eventID string) error {
	return b.SetReminderFn(ctx, eventID)
}

// Sharer is a test double for hacktrack.Sharer.
type Sharer struct {
	ShareFn func(ctx context.Context, event hacktrack.Event) (hacktrack.ShareArtifact, error)
}

// Share delegates to ShareFn.
func (s *Sharer) Share(ctx context.Context, event hacktrack.Event) (hacktrack.ShareArtifact, error) {
	return s.ShareFn(ctx, event)
}

// IdentityProvider is a test double for hacktrack.IdentityProvider.
// SignInURLFn is nil-safe and returns an empty string.
type IdentityProvider struct {
	SignInURLFn func(state string) string
	ExchangeFn  func(ctx context.Context, code string) (hacktrack.Identity, error)
}

// SignInURL delegates to SignInURLFn.
func (p *IdentityProvider) SignInURL(state string) string {
	if p.SignInURLFn == nil {
		return ""
	}
	return p.SignInURLFn(state)
}

// Exchange delegates to ExchangeFn.
func (p *IdentityProvider) Exchange(ctx context.Context, code string) (hacktrack.Identity, error) {
	return p.ExchangeFn(ctx, code)
}
