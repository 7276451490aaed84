package hacktrack

import (
	"context"
	"strings"
)

// ChatPolicy decides whether chat requires a session token. Event actions
// always require one.
type ChatPolicy int

const (
	// ChatGuestAllowed sends chat without credentials when signed out and
	// leaves rejection to the backend.
	ChatGuestAllowed ChatPolicy = iota
	// ChatRequireSignIn refuses to send chat when signed out.
	ChatRequireSignIn
)

// Chat is the network half of the interaction flow: it validates input,
// applies the chat policy and sends one message to the backend.
type Chat struct {
	backend Backend
	session *Session
	policy  ChatPolicy
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithChatPolicy sets the chat auth policy. The default is ChatGuestAllowed.
func WithChatPolicy(p ChatPolicy) ChatOption {
	return func(c *Chat) { c.policy = p }
}

// NewChat creates a Chat.
func NewChat(backend Backend, session *Session, opts ...ChatOption) *Chat {
	c := &Chat{backend: backend, session: session}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the configured chat policy.
func (c *Chat) Policy() ChatPolicy { return c.policy }

// Send sends the trimmed message. Blank input returns ErrEmptyMessage without
// a network call.
func (c *Chat) Send(ctx context.Context, text string) (ChatReply, error) {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return ChatReply{}, ErrEmptyMessage
	}
	if c.policy == ChatRequireSignIn && !c.session.SignedIn() {
		return ChatReply{}, ErrNotSignedIn
	}
	reply, err := c.backend.Chat(ctx, msg)
	if err != nil {
		return ChatReply{}, err
	}
	return reply, nil
}
