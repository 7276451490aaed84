package hacktrack

import (
	"sync"

	"golang.org/x/oauth2"
)

// Identity is the signed-in user as reported by the identity provider.
// Token is an opaque bearer credential forwarded to the backend unmodified;
// the other fields are for display only.
type Identity struct {
	Token   string
	Subject string
	Email   string
	Name    string
}

// DisplayName returns the best human-readable name for the identity.
func (i Identity) DisplayName() string {
	switch {
	case i.Email != "":
		return i.Email
	case i.Name != "":
		return i.Name
	case i.Subject != "":
		return i.Subject
	default:
		return "signed in"
	}
}

// Session holds the current identity token. It is the only state shared
// between the UI loop and in-flight requests, so access is locked. Readers
// capture the token at call-issue time.
type Session struct {
	mu       sync.RWMutex
	identity Identity
	present  bool
	gen      uint64
}

// NewSession returns a signed-out session.
func NewSession() *Session {
	return &Session{}
}

// SetToken stores the identity from a successful sign-in. An empty token
// leaves the session signed out.
func (s *Session) SetToken(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if id.Token == "" {
		s.identity = Identity{}
		s.present = false
		return
	}
	s.identity = id
	s.present = true
}

// Clear removes the token on sign-out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.identity = Identity{}
	s.present = false
}

// Token returns the current token and whether one is present.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Token, s.present
}

// Identity returns the signed-in identity and whether one is present.
func (s *Session) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.present
}

// Generation returns a counter that changes on every SetToken and Clear.
// Work started under one generation is stale once it differs.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// SignedIn reports whether a token is present.
func (s *Session) SignedIn() bool {
	_, ok := s.Token()
	return ok
}

// TokenSource returns an oauth2.TokenSource that reads the session on every
// call. It returns ErrNotSignedIn when no token is present.
func (s *Session) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{s}
}

type sessionTokenSource struct {
	s *Session
}

func (ts sessionTokenSource) Token() (*oauth2.Token, error) {
	tok, ok := ts.s.Token()
	if !ok {
		return nil, ErrNotSignedIn
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}
