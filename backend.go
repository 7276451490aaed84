package hacktrack

import "context"

// Backend is the assistant's HTTP API. Each call makes exactly one attempt.
// Failures are *TransportError, or ErrNotSignedIn when an authenticated call
// finds no token at issue time.
type Backend interface {
	// Chat sends a message. It is authenticated when a token is present.
	Chat(ctx context.Context, message string) (ChatReply, error)
	SaveEvent(ctx context.Context, eventID string) error
	SavedEvents(ctx context.Context) ([]Event, error)
	SetReminder(ctx context.Context, eventID string) error
}

// Sharer produces a share artifact for an event without contacting the backend.
type Sharer interface {
	Share(ctx context.Context, event Event) (ShareArtifact, error)
}

// ShareArtifact is the user-visible result of sharing an event.
type ShareArtifact struct {
	EventID string
	// URL is a reference link naming the event. The backend does not serve
	// a page for it.
	URL string
	// ICS is an iCalendar document for the event; nil when the event date
	// cannot be parsed.
	ICS []byte
	// Path is where ICS was written, if anywhere.
	Path string
}

// IdentityProvider is the external sign-in collaborator.
type IdentityProvider interface {
	// SignInURL returns the URL the user visits to sign in.
	SignInURL(state string) string
	// Exchange trades an authorization code for an identity.
	Exchange(ctx context.Context, code string) (Identity, error)
}
